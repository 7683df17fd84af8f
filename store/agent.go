package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/merge"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/utils"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

// AgentStore keeps one JSON envelope per agent:
//
//	{"description": "...", "files": [{"name": "...", "content": {"mcpServers": {...}}}]}
type AgentStore struct {
	dir string
	xl  xlog.Logger
}

func NewAgentStore(dir string, xl xlog.Logger) *AgentStore {
	if xl == nil {
		xl = xlog.NewLogger("[AgentStore]")
	}
	return &AgentStore{dir: dir, xl: xl}
}

func (s *AgentStore) Dir() string { return s.dir }

func (s *AgentStore) path(file string) string { return filepath.Join(s.dir, file) }

// List returns every agent that can be decoded. Files that fail to decode are
// logged and left out.
func (s *AgentStore) List() ([]types.Agent, error) {
	entries, err := readOrCreateDir(s.dir)
	if err != nil {
		return nil, errs.IO("agent list", s.dir, err)
	}

	agents := make([]types.Agent, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext || utils.IsTempFile(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(s.path(entry.Name()))
		if err != nil {
			s.xl.Warnf("skip agent %s: %v", entry.Name(), err)
			continue
		}
		var env types.AgentEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.xl.Warnf("skip agent %s: %v", entry.Name(), err)
			continue
		}
		if env.Files == nil {
			env.Files = []types.AgentFile{}
		}
		agents = append(agents, types.Agent{Name: entry.Name(), AgentEnvelope: env})
	}
	return agents, nil
}

// Read returns the decoded envelope of one agent. Unlike List, a file that
// does not decode is an error.
func (s *AgentStore) Read(name string) (types.Agent, error) {
	file, err := NormalizeName(name)
	if err != nil {
		return types.Agent{}, err
	}
	data, err := os.ReadFile(s.path(file))
	if err != nil {
		return types.Agent{}, fileError("agent read", file, err)
	}
	var env types.AgentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return types.Agent{}, errs.InvalidFormat("agent read", file, err)
	}
	if env.Files == nil {
		env.Files = []types.AgentFile{}
	}
	return types.Agent{Name: file, AgentEnvelope: env}, nil
}

// Save stores composite as the single file of the agent, replacing any agent
// with the same name.
func (s *AgentStore) Save(name, description string, composite *merge.Composite) (types.Agent, error) {
	file, err := NormalizeName(name)
	if err != nil {
		return types.Agent{}, err
	}
	if composite == nil {
		composite = merge.NewComposite()
	}
	content, err := json.Marshal(composite)
	if err != nil {
		return types.Agent{}, errs.InvalidFormat("agent save", file, err)
	}

	agent := types.Agent{
		Name: file,
		AgentEnvelope: types.AgentEnvelope{
			Description: description,
			Files:       []types.AgentFile{{Name: file, Content: content}},
		},
	}
	if err := s.write(file, agent.AgentEnvelope); err != nil {
		return types.Agent{}, err
	}
	s.xl.Debugf("saved agent %s with %d servers", file, composite.Len())
	return agent, nil
}

func (s *AgentStore) write(file string, env types.AgentEnvelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return errs.InvalidFormat("agent save", file, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errs.IO("agent save", file, err)
	}
	if err := utils.WriteFileAtomic(s.path(file), data, 0o644); err != nil {
		return errs.IO("agent save", file, err)
	}
	return nil
}

func (s *AgentStore) Delete(name string) error {
	file, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(s.path(file)); err != nil {
		return fileError("agent delete", file, err)
	}
	s.xl.Debugf("deleted agent %s", file)
	return nil
}

// Composite merges every file of the agent in order.
func Composite(agent types.Agent) (*merge.Composite, error) {
	docs := make([]merge.Document, len(agent.Files))
	for i, f := range agent.Files {
		if len(f.Content) == 0 {
			docs[i] = merge.Value(nil)
			continue
		}
		docs[i] = merge.Bytes(f.Content).Named(fmt.Sprintf("%s#%s", agent.Name, f.Name))
	}
	return merge.Merge(docs...)
}
