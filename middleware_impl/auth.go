package middleware_impl

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lucky-aeon/agentx/mcp-manager/config"
	"github.com/lucky-aeon/agentx/mcp-manager/errs"
)

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

func (m *AuthMiddleware) GetKeyAuthConfig() middleware.KeyAuthConfig {
	return middleware.KeyAuthConfig{
		KeyLookup: "header:Authorization:Bearer ,query:api_key", // header first, then query
		Validator: m.KeyAuthValidator,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, map[string]any{"code": 401, "msg": errs.ErrAuthFailed.Error()})
		},
	}
}

// KeyAuthValidator rejects every key while auth is enabled without an API key.
func (m *AuthMiddleware) KeyAuthValidator(key string, c echo.Context) (bool, error) {
	auth := m.config.GetAuthConfig()
	if auth.GetApiKey() == "" {
		return false, errs.ErrAuthConfigNotFound
	}
	return key == auth.GetApiKey(), nil
}
