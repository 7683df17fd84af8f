package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucky-aeon/agentx/mcp-manager/service"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
)

func (m *ServerManager) handleListAgents(c echo.Context) error {
	agents, err := m.mcpServiceMgr.ListAgents(m.logger(c))
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, agents)
}

func (m *ServerManager) handleGetAgent(c echo.Context) error {
	agent, err := m.mcpServiceMgr.GetAgent(m.logger(c), c.Param("name"))
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, agent)
}

func (m *ServerManager) handleSaveAgent(c echo.Context) error {
	var req types.SaveAgentRequest
	if err := c.Bind(&req); err != nil {
		return m.fail(c, bindError(err))
	}
	agent, err := m.mcpServiceMgr.SaveAgent(m.logger(c), c.Param("name"), req)
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, agent)
}

func (m *ServerManager) handleDeleteAgent(c echo.Context) error {
	if err := m.mcpServiceMgr.DeleteAgent(m.logger(c), c.Param("name")); err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (m *ServerManager) handleApplyAgent(c echo.Context) error {
	var req types.ApplyRequest
	if err := c.Bind(&req); err != nil {
		return m.fail(c, bindError(err))
	}
	composite, res, err := m.mcpServiceMgr.ApplyAgent(m.logger(c), c.Param("name"), req.Targets)
	if err != nil {
		return m.fail(c, err)
	}
	raw, err := service.MarshalComposite(composite)
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(publishStatus(res), types.ApplyResponse{Composite: raw, Targets: res.Report()})
}
