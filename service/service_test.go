package service

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/publish"
	"github.com/lucky-aeon/agentx/mcp-manager/selection"
	"github.com/lucky-aeon/agentx/mcp-manager/store"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

type fixture struct {
	mgr     *ServiceManager
	dir     string
	targets []types.Target
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	targets := []types.Target{
		{Name: "cursor", Path: filepath.Join(dir, "home", ".cursor", "mcp.json")},
		{Name: "claude", Path: filepath.Join(dir, "config", "Claude", "claude_desktop_config.json")},
	}
	mgr := New(
		store.NewFragmentStore(filepath.Join(dir, "data"), xlog.Nop()),
		store.NewAgentStore(filepath.Join(dir, "data", "templates"), xlog.Nop()),
		publish.New(targets, xlog.Nop()),
		nil,
	)
	t.Cleanup(mgr.Close)
	return &fixture{mgr: mgr, dir: dir, targets: targets}
}

func (f *fixture) save(t *testing.T, name, content string) {
	t.Helper()
	_, err := f.mgr.SaveFragment(xlog.Nop(), name, types.SaveFragmentRequest{Content: content})
	require.NoError(t, err)
}

func readJSON(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestListFragments_Preview(t *testing.T) {
	f := newFixture(t)
	f.save(t, "b", `{"mcpServers":{"z":{},"y":{}}}`)
	f.save(t, "a", `{"other":1}`)

	list, err := f.mgr.ListFragments(xlog.Nop())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a.json", list[0].Name)
	assert.Empty(t, list[0].Servers)
	assert.Equal(t, []string{"z", "y"}, list[1].Servers)
	assert.True(t, list[1].Valid)
}

func TestApplyFragments(t *testing.T) {
	f := newFixture(t)
	f.save(t, "one", `{"mcpServers":{"a":{"x":1}}}`)
	f.save(t, "two", `{"mcpServers":{"a":{"x":2},"b":{"y":1}}}`)

	c, res, err := f.mgr.ApplyFragments(xlog.Nop(), []string{"one", "two"}, nil)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"a", "b"}, c.Servers())

	for _, target := range f.targets {
		assert.JSONEq(t, `{"mcpServers":{"a":{"x":2},"b":{"y":1}}}`, readJSON(t, target.Path))
	}
}

func TestApplyFragments_Missing(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.mgr.ApplyFragments(xlog.Nop(), []string{"ghost"}, nil)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestApplySelection_ClearsOnSuccess(t *testing.T) {
	f := newFixture(t)
	f.save(t, "a", `{"mcpServers":{"a":{}}}`)
	f.save(t, "b", `{"mcpServers":{"b":{}}}`)
	f.save(t, "c", `{"mcpServers":{"c":{}}}`)

	sel := selection.New()
	_, err := ToggleSelection(sel, "c")
	require.NoError(t, err)
	_, err = ToggleSelection(sel, "a.json")
	require.NoError(t, err)

	c, res, err := f.mgr.ApplySelection(xlog.Nop(), sel, "b", []string{"cursor"})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"a", "c"}, c.Servers())
	assert.Equal(t, 0, sel.Len())
	assert.NoFileExists(t, f.targets[1].Path)
}

func TestApplySelection_CurrentWhenEmpty(t *testing.T) {
	f := newFixture(t)
	f.save(t, "a", `{"mcpServers":{"a":{}}}`)
	f.save(t, "b", `{"mcpServers":{"b":{}}}`)

	c, _, err := f.mgr.ApplySelection(xlog.Nop(), selection.New(), "b", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, c.Servers())

	_, _, err = f.mgr.ApplySelection(xlog.Nop(), selection.New(), "nope", nil)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, _, err = f.mgr.ApplySelection(xlog.Nop(), selection.New(), "", nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidFormat))
}

func TestApplySelection_KeepsSelectionOnFailure(t *testing.T) {
	f := newFixture(t)
	f.save(t, "a", `{"mcpServers":{"a":{}}}`)
	f.save(t, "broken", `{"mcpServers":[]}`)

	// merge failure
	sel := selection.New("a.json", "broken.json")
	_, _, err := f.mgr.ApplySelection(xlog.Nop(), sel, "", nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidFormat))
	assert.Equal(t, 2, sel.Len())

	// partial publish failure
	blocker := filepath.Join(f.dir, "home")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	sel = selection.New("a.json")
	_, res, err := f.mgr.ApplySelection(xlog.Nop(), sel, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cursor"}, res.Failed())
	assert.Equal(t, []string{"claude"}, res.Succeeded())
	assert.True(t, sel.Contains("a.json"))
}

func TestSaveSelectionAsAgent(t *testing.T) {
	f := newFixture(t)
	f.save(t, "a", `{"mcpServers":{"s":{"v":1}}}`)
	f.save(t, "b", `{"mcpServers":{"s":{"v":2}}}`)

	sel := selection.New("a.json", "b.json")
	agent, err := f.mgr.SaveSelectionAsAgent(xlog.Nop(), sel, "", "combo", "both")
	require.NoError(t, err)
	assert.Equal(t, "combo.json", agent.Name)
	assert.Equal(t, 0, sel.Len())

	agents, err := f.mgr.ListAgents(xlog.Nop())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.JSONEq(t, `{"mcpServers":{"s":{"v":2}}}`, string(agents[0].Files[0].Content))

	blank, err := f.mgr.SaveSelectionAsAgent(xlog.Nop(), selection.New(), "", "blank", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"mcpServers":{}}`, string(blank.Files[0].Content))
}

func TestSaveAgent_EditAndRename(t *testing.T) {
	f := newFixture(t)
	f.save(t, "a", `{"mcpServers":{"a":{}}}`)

	_, err := f.mgr.SaveAgent(xlog.Nop(), "first", types.SaveAgentRequest{Fragments: []string{"a"}, Description: "d"})
	require.NoError(t, err)

	edited, err := f.mgr.SaveAgent(xlog.Nop(), "second", types.SaveAgentRequest{
		Content:      json.RawMessage(`{"mcpServers":{"edited":{"url":"http://localhost"}}}`),
		Description:  "d2",
		PreviousName: "first",
	})
	require.NoError(t, err)
	assert.Equal(t, "second.json", edited.Name)

	_, err = f.mgr.GetAgent(xlog.Nop(), "first")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	got, err := f.mgr.GetAgent(xlog.Nop(), "second")
	require.NoError(t, err)
	assert.Equal(t, "d2", got.Description)
	assert.JSONEq(t, `{"mcpServers":{"edited":{"url":"http://localhost"}}}`, string(got.Files[0].Content))

	_, err = f.mgr.SaveAgent(xlog.Nop(), "second", types.SaveAgentRequest{Content: json.RawMessage(`{bad`)})
	assert.True(t, errors.Is(err, errs.ErrInvalidFormat))
}

func TestApplyAgent(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.SaveAgent(xlog.Nop(), "ag", types.SaveAgentRequest{Content: json.RawMessage(`{"mcpServers":{"s":{}}}`)})
	require.NoError(t, err)

	c, res, err := f.mgr.ApplyAgent(xlog.Nop(), "ag", []string{"claude"})
	require.NoError(t, err)
	assert.Equal(t, []string{"claude"}, res.Succeeded())
	assert.Equal(t, 1, c.Len())
	assert.JSONEq(t, `{"mcpServers":{"s":{}}}`, readJSON(t, f.targets[1].Path))

	_, _, err = f.mgr.ApplyAgent(xlog.Nop(), "missing", nil)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestDeleteFragmentAndAgent(t *testing.T) {
	f := newFixture(t)
	f.save(t, "a", `{}`)
	_, err := f.mgr.SaveAgent(xlog.Nop(), "ag", types.SaveAgentRequest{})
	require.NoError(t, err)

	require.NoError(t, f.mgr.DeleteFragment(xlog.Nop(), "a"))
	require.NoError(t, f.mgr.DeleteAgent(xlog.Nop(), "ag"))
	assert.True(t, errors.Is(f.mgr.DeleteFragment(xlog.Nop(), "a"), errs.ErrNotFound))
	assert.True(t, errors.Is(f.mgr.DeleteAgent(xlog.Nop(), "ag"), errs.ErrNotFound))
}

func TestTargets(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, f.targets, f.mgr.Targets())
}
