package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/publish"
)

func errorStatus(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, errs.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (m *ServerManager) fail(c echo.Context, err error) error {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		m.logger(c).Errorf("request failed: %v", err)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// publishStatus is 200 when every target was written, 206 for a mix and 500
// when nothing was written.
func publishStatus(res *publish.Result) int {
	switch {
	case res.OK():
		return http.StatusOK
	case res.Partial():
		return http.StatusPartialContent
	case len(res.Outcomes) == 0:
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func bindError(err error) error {
	return errs.InvalidFormat("decode request", "", err)
}
