package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucky-aeon/agentx/mcp-manager/types"
)

func (m *ServerManager) handleListFragments(c echo.Context) error {
	list, err := m.mcpServiceMgr.ListFragments(m.logger(c))
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (m *ServerManager) handleGetFragment(c echo.Context) error {
	f, err := m.mcpServiceMgr.GetFragment(m.logger(c), c.Param("name"))
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (m *ServerManager) handleSaveFragment(c echo.Context) error {
	var req types.SaveFragmentRequest
	if err := c.Bind(&req); err != nil {
		return m.fail(c, bindError(err))
	}
	f, err := m.mcpServiceMgr.SaveFragment(m.logger(c), c.Param("name"), req)
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (m *ServerManager) handleDeleteFragment(c echo.Context) error {
	if err := m.mcpServiceMgr.DeleteFragment(m.logger(c), c.Param("name")); err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}
