package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/service"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
)

func (m *ServerManager) session(c echo.Context) (*service.Session, error) {
	id := c.Param("id")
	session, ok := m.mcpServiceMgr.GetSession(m.logger(c), id)
	if !ok {
		return nil, errs.NotFound("session", id, errors.New("session not found or expired"))
	}
	return session, nil
}

func sessionResponse(s *service.Session) types.SessionResponse {
	return types.SessionResponse{ID: s.GetId(), Selected: s.Selection.Names()}
}

func (m *ServerManager) handleCreateSession(c echo.Context) error {
	session := m.mcpServiceMgr.CreateSession(m.logger(c))
	return c.JSON(http.StatusCreated, sessionResponse(session))
}

func (m *ServerManager) handleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !m.mcpServiceMgr.CloseSession(m.logger(c), id) {
		return m.fail(c, errs.NotFound("session", id, nil))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (m *ServerManager) handleGetSelection(c echo.Context) error {
	session, err := m.session(c)
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

func (m *ServerManager) handleToggleSelection(c echo.Context) error {
	session, err := m.session(c)
	if err != nil {
		return m.fail(c, err)
	}
	if _, err := service.ToggleSelection(session.Selection, c.Param("name")); err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

func (m *ServerManager) handleClearSelection(c echo.Context) error {
	session, err := m.session(c)
	if err != nil {
		return m.fail(c, err)
	}
	session.Selection.Clear()
	return c.JSON(http.StatusOK, sessionResponse(session))
}

func (m *ServerManager) handleApplySelection(c echo.Context) error {
	session, err := m.session(c)
	if err != nil {
		return m.fail(c, err)
	}
	var req types.ApplyRequest
	if err := c.Bind(&req); err != nil {
		return m.fail(c, bindError(err))
	}
	composite, res, err := m.mcpServiceMgr.ApplySelection(m.logger(c), session.Selection, req.Current, req.Targets)
	if err != nil {
		return m.fail(c, err)
	}
	raw, err := service.MarshalComposite(composite)
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(publishStatus(res), types.ApplyResponse{Composite: raw, Targets: res.Report()})
}

func (m *ServerManager) handleSaveSelection(c echo.Context) error {
	session, err := m.session(c)
	if err != nil {
		return m.fail(c, err)
	}
	var req types.SaveSelectionRequest
	if err := c.Bind(&req); err != nil {
		return m.fail(c, bindError(err))
	}
	agent, err := m.mcpServiceMgr.SaveSelectionAsAgent(m.logger(c), session.Selection, req.Current, req.Name, req.Description)
	if err != nil {
		return m.fail(c, err)
	}
	return c.JSON(http.StatusCreated, agent)
}
