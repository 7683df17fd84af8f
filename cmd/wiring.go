package cmd

import (
	"github.com/lucky-aeon/agentx/mcp-manager/config"
	"github.com/lucky-aeon/agentx/mcp-manager/publish"
	"github.com/lucky-aeon/agentx/mcp-manager/store"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

func newFragmentStore(cfg *config.Config) *store.FragmentStore {
	return store.NewFragmentStore(cfg.FragmentDir, xlog.NewLogger("[FragmentStore]"))
}

func newAgentStore(cfg *config.Config) *store.AgentStore {
	return store.NewAgentStore(cfg.AgentDir, xlog.NewLogger("[AgentStore]"))
}

func newPublisher(cfg *config.Config) *publish.Publisher {
	return publish.New(cfg.TargetList(), xlog.NewLogger("[Publisher]"))
}
