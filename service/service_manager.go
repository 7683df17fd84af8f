package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/lucky-aeon/agentx/mcp-manager/config"
	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/merge"
	"github.com/lucky-aeon/agentx/mcp-manager/publish"
	"github.com/lucky-aeon/agentx/mcp-manager/selection"
	"github.com/lucky-aeon/agentx/mcp-manager/store"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

type ServiceManagerI interface {
	ListFragments(xl xlog.Logger) ([]types.FragmentPreview, error)
	GetFragment(xl xlog.Logger, name string) (types.Fragment, error)
	SaveFragment(xl xlog.Logger, name string, req types.SaveFragmentRequest) (types.Fragment, error)
	DeleteFragment(xl xlog.Logger, name string) error

	ListAgents(xl xlog.Logger) ([]types.Agent, error)
	GetAgent(xl xlog.Logger, name string) (types.Agent, error)
	SaveAgent(xl xlog.Logger, name string, req types.SaveAgentRequest) (types.Agent, error)
	DeleteAgent(xl xlog.Logger, name string) error

	MergeFragments(xl xlog.Logger, names []string) (*merge.Composite, error)
	Publish(xl xlog.Logger, composite *merge.Composite, targets []string) *publish.Result
	ApplyFragments(xl xlog.Logger, names, targets []string) (*merge.Composite, *publish.Result, error)
	ApplyAgent(xl xlog.Logger, name string, targets []string) (*merge.Composite, *publish.Result, error)
	ApplySelection(xl xlog.Logger, sel *selection.Set, current string, targets []string) (*merge.Composite, *publish.Result, error)
	SaveSelectionAsAgent(xl xlog.Logger, sel *selection.Set, current, name, description string) (types.Agent, error)
	Targets() []types.Target

	CreateSession(xl xlog.Logger) *Session
	GetSession(xl xlog.Logger, id string) (*Session, bool)
	CloseSession(xl xlog.Logger, id string) bool
	Close()
}

// ServiceManager ties the stores, the merge engine and the publisher together.
type ServiceManager struct {
	fragments *store.FragmentStore
	agents    *store.AgentStore
	publisher *publish.Publisher
	*SessionManager
}

func NewServiceManager(cfg config.Config) *ServiceManager {
	cfg.Default()
	return New(
		store.NewFragmentStore(cfg.FragmentDir, xlog.NewLogger("[FragmentStore]")),
		store.NewAgentStore(cfg.AgentDir, xlog.NewLogger("[AgentStore]")),
		publish.New(cfg.TargetList(), xlog.NewLogger("[Publisher]")),
		NewSessionManager(cfg.SessionGCInterval, cfg.SessionTimeout),
	)
}

func New(fragments *store.FragmentStore, agents *store.AgentStore, publisher *publish.Publisher, sessions *SessionManager) *ServiceManager {
	if sessions == nil {
		sessions = NewSessionManager(0, 0)
	}
	return &ServiceManager{
		fragments:      fragments,
		agents:         agents,
		publisher:      publisher,
		SessionManager: sessions,
	}
}

func (m *ServiceManager) ListFragments(xl xlog.Logger) ([]types.FragmentPreview, error) {
	list, err := m.fragments.List()
	if err != nil {
		xl.Errorf("list fragments: %v", err)
		return nil, err
	}
	previews := make([]types.FragmentPreview, 0, len(list))
	for _, f := range list {
		previews = append(previews, Preview(f))
	}
	return previews, nil
}

// Preview lists the servers a fragment declares.
func Preview(f types.Fragment) types.FragmentPreview {
	p := types.FragmentPreview{Fragment: f, Servers: []string{}, Valid: gjson.Valid(f.Content)}
	if !p.Valid {
		return p
	}
	gjson.Get(f.Content, "mcpServers").ForEach(func(key, _ gjson.Result) bool {
		p.Servers = append(p.Servers, key.String())
		return true
	})
	return p
}

func (m *ServiceManager) GetFragment(_ xlog.Logger, name string) (types.Fragment, error) {
	return m.fragments.Get(name)
}

func (m *ServiceManager) SaveFragment(xl xlog.Logger, name string, req types.SaveFragmentRequest) (types.Fragment, error) {
	f, err := m.fragments.Save(name, req.Content, req.Description, req.PreviousName)
	if err != nil {
		xl.Warnf("save fragment %s: %v", name, err)
		return types.Fragment{}, err
	}
	xl.Infof("fragment saved: %s", f.Name)
	return f, nil
}

func (m *ServiceManager) DeleteFragment(xl xlog.Logger, name string) error {
	if err := m.fragments.Delete(name); err != nil {
		return err
	}
	xl.Infof("fragment deleted: %s", name)
	return nil
}

func (m *ServiceManager) ListAgents(_ xlog.Logger) ([]types.Agent, error) {
	return m.agents.List()
}

func (m *ServiceManager) GetAgent(_ xlog.Logger, name string) (types.Agent, error) {
	return m.agents.Read(name)
}

// SaveAgent creates or edits an agent. With req.Content the composite is taken
// from that JSON, otherwise req.Fragments are merged. A different
// req.PreviousName renames the agent.
func (m *ServiceManager) SaveAgent(xl xlog.Logger, name string, req types.SaveAgentRequest) (types.Agent, error) {
	var (
		composite *merge.Composite
		err       error
	)
	if len(req.Content) > 0 {
		composite, err = merge.Merge(merge.Bytes(req.Content).Named(name))
	} else {
		composite, err = m.MergeFragments(xl, req.Fragments)
	}
	if err != nil {
		return types.Agent{}, err
	}

	agent, err := m.agents.Save(name, req.Description, composite)
	if err != nil {
		return types.Agent{}, err
	}
	if req.PreviousName != "" {
		prev, err := store.NormalizeName(req.PreviousName)
		if err != nil {
			return agent, err
		}
		if prev != agent.Name {
			if err := m.agents.Delete(prev); err != nil && !errors.Is(err, errs.ErrNotFound) {
				return agent, err
			}
		}
	}
	xl.Infof("agent saved: %s (%d servers)", agent.Name, composite.Len())
	return agent, nil
}

func (m *ServiceManager) DeleteAgent(xl xlog.Logger, name string) error {
	if err := m.agents.Delete(name); err != nil {
		return err
	}
	xl.Infof("agent deleted: %s", name)
	return nil
}

// MergeFragments merges the named fragments in the given order.
func (m *ServiceManager) MergeFragments(_ xlog.Logger, names []string) (*merge.Composite, error) {
	docs := make([]merge.Document, 0, len(names))
	for _, name := range names {
		content, err := m.fragments.Read(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, merge.Text(content).Named(name))
	}
	return merge.Merge(docs...)
}

func (m *ServiceManager) Publish(xl xlog.Logger, composite *merge.Composite, targets []string) *publish.Result {
	res := m.publisher.Publish(composite, targets...)
	if err := res.Err(); err != nil {
		xl.Warnf("publish: %v", err)
	}
	return res
}

func (m *ServiceManager) ApplyFragments(xl xlog.Logger, names, targets []string) (*merge.Composite, *publish.Result, error) {
	composite, err := m.MergeFragments(xl, names)
	if err != nil {
		return nil, nil, err
	}
	return composite, m.Publish(xl, composite, targets), nil
}

// ApplyAgent publishes the composite of every file of an agent.
func (m *ServiceManager) ApplyAgent(xl xlog.Logger, name string, targets []string) (*merge.Composite, *publish.Result, error) {
	agent, err := m.agents.Read(name)
	if err != nil {
		return nil, nil, err
	}
	composite, err := store.Composite(agent)
	if err != nil {
		return nil, nil, err
	}
	return composite, m.Publish(xl, composite, targets), nil
}

// pick resolves the merge inputs for a selection, see selection.Set.Pick.
func (m *ServiceManager) pick(sel *selection.Set, current string) ([]types.Fragment, error) {
	if current != "" {
		var err error
		if current, err = store.NormalizeName(current); err != nil {
			return nil, err
		}
	}
	listing, err := m.fragments.List()
	if err != nil {
		return nil, err
	}
	picked := sel.Pick(listing, current)
	if len(picked) == 0 && current != "" && sel.Len() == 0 {
		return nil, errs.NotFound("fragment read", current, nil)
	}
	return picked, nil
}

func mergePicked(picked []types.Fragment) (*merge.Composite, error) {
	docs := make([]merge.Document, len(picked))
	for i, f := range picked {
		docs[i] = merge.Text(f.Content).Named(f.Name)
	}
	return merge.Merge(docs...)
}

// ApplySelection merges the selected fragments, or current when nothing is
// selected, and publishes the result. The selection is cleared only when every
// target was written.
func (m *ServiceManager) ApplySelection(xl xlog.Logger, sel *selection.Set, current string, targets []string) (*merge.Composite, *publish.Result, error) {
	picked, err := m.pick(sel, current)
	if err != nil {
		return nil, nil, err
	}
	if len(picked) == 0 {
		return nil, nil, errs.InvalidFormat("apply", "", errors.New("no fragment selected"))
	}
	composite, err := mergePicked(picked)
	if err != nil {
		return nil, nil, err
	}
	res := m.Publish(xl, composite, targets)
	if res.OK() {
		sel.Clear()
	}
	return composite, res, nil
}

// SaveSelectionAsAgent stores the merged selection as a new agent. An empty
// selection without current gives a blank agent.
func (m *ServiceManager) SaveSelectionAsAgent(xl xlog.Logger, sel *selection.Set, current, name, description string) (types.Agent, error) {
	picked, err := m.pick(sel, current)
	if err != nil {
		return types.Agent{}, err
	}
	composite, err := mergePicked(picked)
	if err != nil {
		return types.Agent{}, err
	}
	agent, err := m.agents.Save(name, description, composite)
	if err != nil {
		return types.Agent{}, err
	}
	sel.Clear()
	xl.Infof("agent saved from %d fragments: %s", len(picked), agent.Name)
	return agent, nil
}

// ToggleSelection flips name in sel after checking it is a valid fragment name.
func ToggleSelection(sel *selection.Set, name string) (bool, error) {
	file, err := store.NormalizeName(name)
	if err != nil {
		return false, err
	}
	return sel.Toggle(file), nil
}

func (m *ServiceManager) Targets() []types.Target {
	return m.publisher.Targets()
}

func (m *ServiceManager) Close() {
	m.SessionManager.Close()
}

// MarshalComposite renders a composite for API responses.
func MarshalComposite(c *merge.Composite) (json.RawMessage, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal composite: %w", err)
	}
	return data, nil
}
