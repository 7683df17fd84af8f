package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/merge"
	"github.com/lucky-aeon/agentx/mcp-manager/publish"
	"github.com/lucky-aeon/agentx/mcp-manager/selection"
	"github.com/lucky-aeon/agentx/mcp-manager/service"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

// MockServiceManager mocks service.ServiceManagerI
type MockServiceManager struct {
	mock.Mock
}

func (m *MockServiceManager) ListFragments(xl xlog.Logger) ([]types.FragmentPreview, error) {
	args := m.Called(xl)
	return args.Get(0).([]types.FragmentPreview), args.Error(1)
}

func (m *MockServiceManager) GetFragment(xl xlog.Logger, name string) (types.Fragment, error) {
	args := m.Called(xl, name)
	return args.Get(0).(types.Fragment), args.Error(1)
}

func (m *MockServiceManager) SaveFragment(xl xlog.Logger, name string, req types.SaveFragmentRequest) (types.Fragment, error) {
	args := m.Called(xl, name, req)
	return args.Get(0).(types.Fragment), args.Error(1)
}

func (m *MockServiceManager) DeleteFragment(xl xlog.Logger, name string) error {
	return m.Called(xl, name).Error(0)
}

func (m *MockServiceManager) ListAgents(xl xlog.Logger) ([]types.Agent, error) {
	args := m.Called(xl)
	return args.Get(0).([]types.Agent), args.Error(1)
}

func (m *MockServiceManager) GetAgent(xl xlog.Logger, name string) (types.Agent, error) {
	args := m.Called(xl, name)
	return args.Get(0).(types.Agent), args.Error(1)
}

func (m *MockServiceManager) SaveAgent(xl xlog.Logger, name string, req types.SaveAgentRequest) (types.Agent, error) {
	args := m.Called(xl, name, req)
	return args.Get(0).(types.Agent), args.Error(1)
}

func (m *MockServiceManager) DeleteAgent(xl xlog.Logger, name string) error {
	return m.Called(xl, name).Error(0)
}

func (m *MockServiceManager) MergeFragments(xl xlog.Logger, names []string) (*merge.Composite, error) {
	args := m.Called(xl, names)
	c, _ := args.Get(0).(*merge.Composite)
	return c, args.Error(1)
}

func (m *MockServiceManager) Publish(xl xlog.Logger, composite *merge.Composite, targets []string) *publish.Result {
	return m.Called(xl, composite, targets).Get(0).(*publish.Result)
}

func (m *MockServiceManager) ApplyFragments(xl xlog.Logger, names, targets []string) (*merge.Composite, *publish.Result, error) {
	args := m.Called(xl, names, targets)
	c, _ := args.Get(0).(*merge.Composite)
	r, _ := args.Get(1).(*publish.Result)
	return c, r, args.Error(2)
}

func (m *MockServiceManager) ApplyAgent(xl xlog.Logger, name string, targets []string) (*merge.Composite, *publish.Result, error) {
	args := m.Called(xl, name, targets)
	c, _ := args.Get(0).(*merge.Composite)
	r, _ := args.Get(1).(*publish.Result)
	return c, r, args.Error(2)
}

func (m *MockServiceManager) ApplySelection(xl xlog.Logger, sel *selection.Set, current string, targets []string) (*merge.Composite, *publish.Result, error) {
	args := m.Called(xl, sel, current, targets)
	c, _ := args.Get(0).(*merge.Composite)
	r, _ := args.Get(1).(*publish.Result)
	return c, r, args.Error(2)
}

func (m *MockServiceManager) SaveSelectionAsAgent(xl xlog.Logger, sel *selection.Set, current, name, description string) (types.Agent, error) {
	args := m.Called(xl, sel, current, name, description)
	return args.Get(0).(types.Agent), args.Error(1)
}

func (m *MockServiceManager) Targets() []types.Target {
	return m.Called().Get(0).([]types.Target)
}

func (m *MockServiceManager) CreateSession(xl xlog.Logger) *service.Session {
	return m.Called(xl).Get(0).(*service.Session)
}

func (m *MockServiceManager) GetSession(xl xlog.Logger, id string) (*service.Session, bool) {
	args := m.Called(xl, id)
	s, _ := args.Get(0).(*service.Session)
	return s, args.Bool(1)
}

func (m *MockServiceManager) CloseSession(xl xlog.Logger, id string) bool {
	return m.Called(xl, id).Bool(0)
}

func (m *MockServiceManager) Close() {
	m.Called()
}

func createTestServerManager() (*ServerManager, *MockServiceManager) {
	mockServiceMgr := &MockServiceManager{}
	return &ServerManager{mcpServiceMgr: mockServiceMgr, xl: xlog.Nop()}, mockServiceMgr
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid format", errs.InvalidFormat("fragment save", "a", errors.New("x")), http.StatusBadRequest},
		{"not found", fmt.Errorf("wrapped: %w", errs.NotFound("fragment read", "a", nil)), http.StatusNotFound},
		{"io", errs.IO("fragment save", "a", errors.New("disk full")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"http error", echo.NewHTTPError(http.StatusUnsupportedMediaType), http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}

func TestHandleListFragments_IOError(t *testing.T) {
	e := echo.New()
	serverMgr, mockServiceMgr := createTestServerManager()
	mockServiceMgr.On("ListFragments", mock.Anything).
		Return([]types.FragmentPreview(nil), errs.IO("fragment list", "/data", errors.New("permission denied")))

	req := httptest.NewRequest(http.MethodGet, "/api/fragments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := serverMgr.handleListFragments(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission denied")
	mockServiceMgr.AssertExpectations(t)
}

func TestHandleApplyAgent_AllTargetsFailed(t *testing.T) {
	e := echo.New()
	serverMgr, mockServiceMgr := createTestServerManager()
	failed := &publish.Result{Outcomes: []publish.Outcome{
		{Target: types.Target{Name: "cursor"}, Err: errs.IO("publish", "cursor", errors.New("read-only"))},
	}}
	mockServiceMgr.On("ApplyAgent", mock.Anything, "ag", []string{"cursor"}).
		Return(merge.NewComposite(), failed, nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"targets":["cursor"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/agents/:name/apply")
	c.SetParamNames("name")
	c.SetParamValues("ag")

	err := serverMgr.handleApplyAgent(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "read-only")
	mockServiceMgr.AssertExpectations(t)
}

func TestHandleGetSelection_UnknownSession(t *testing.T) {
	e := echo.New()
	serverMgr, mockServiceMgr := createTestServerManager()
	mockServiceMgr.On("GetSession", mock.Anything, "nope").Return(nil, false)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	assert.NoError(t, serverMgr.handleGetSelection(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
