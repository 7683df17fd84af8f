package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lucky-aeon/agentx/mcp-manager/config"
	"github.com/lucky-aeon/agentx/mcp-manager/middleware_impl"
	"github.com/lucky-aeon/agentx/mcp-manager/service"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

// ServerManager serves the fragment, agent and session API.
type ServerManager struct {
	mcpServiceMgr service.ServiceManagerI
	cfg           config.Config
	xl            xlog.Logger
}

// NewServerManager registers all routes on e. mcpHandler, when not nil, is
// mounted at /mcp.
func NewServerManager(cfg config.Config, e *echo.Echo, mgr service.ServiceManagerI, mcpHandler http.Handler) *ServerManager {
	m := &ServerManager{
		mcpServiceMgr: mgr,
		cfg:           cfg,
		xl:            xlog.NewLogger("[ServerManager]"),
	}

	var guards []echo.MiddlewareFunc
	if cfg.GetAuthConfig().IsEnabled() {
		guards = append(guards, middleware.KeyAuthWithConfig(middleware_impl.NewAuthMiddleware(&cfg).GetKeyAuthConfig()))
	}

	api := e.Group("/api", guards...)

	// fragments
	api.GET("/fragments", m.handleListFragments)
	api.GET("/fragments/:name", m.handleGetFragment)
	api.PUT("/fragments/:name", m.handleSaveFragment)
	api.DELETE("/fragments/:name", m.handleDeleteFragment)

	// agents
	api.GET("/agents", m.handleListAgents)
	api.GET("/agents/:name", m.handleGetAgent)
	api.PUT("/agents/:name", m.handleSaveAgent)
	api.DELETE("/agents/:name", m.handleDeleteAgent)
	api.POST("/agents/:name/apply", m.handleApplyAgent)

	// merge / publish
	api.POST("/merge", m.handleMerge)
	api.GET("/targets", m.handleGetTargets)

	// sessions
	api.POST("/sessions", m.handleCreateSession)
	api.DELETE("/sessions/:id", m.handleDeleteSession)
	api.GET("/sessions/:id/selection", m.handleGetSelection)
	api.POST("/sessions/:id/selection/:name", m.handleToggleSelection)
	api.DELETE("/sessions/:id/selection", m.handleClearSelection)
	api.POST("/sessions/:id/apply", m.handleApplySelection)
	api.POST("/sessions/:id/agents", m.handleSaveSelection)

	if mcpHandler != nil {
		e.Any("/mcp", echo.WrapHandler(mcpHandler), guards...)
	}
	return m
}

func (m *ServerManager) logger(c echo.Context) xlog.Logger {
	return m.xl.With("method", c.Request().Method, "path", c.Path())
}

func (m *ServerManager) Close() {
	m.mcpServiceMgr.Close()
}
