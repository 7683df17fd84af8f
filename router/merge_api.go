package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucky-aeon/agentx/mcp-manager/types"
)

// handleMerge returns the composite of the given fragments without publishing it.
func (m *ServerManager) handleMerge(c echo.Context) error {
	var req types.MergeRequest
	if err := c.Bind(&req); err != nil {
		return m.fail(c, bindError(err))
	}
	composite, err := m.mcpServiceMgr.MergeFragments(m.logger(c), req.Fragments)
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, composite)
}

func (m *ServerManager) handleGetTargets(c echo.Context) error {
	return c.JSON(http.StatusOK, m.mcpServiceMgr.Targets())
}
