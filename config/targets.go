package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lucky-aeon/agentx/mcp-manager/types"
)

// Target names known out of the box. Cursor is the primary target.
const (
	TargetCursor = "cursor"
	TargetClaude = "claude"
)

var builtinOrder = []string{TargetCursor, TargetClaude}

func DefaultTargets() map[string]string {
	targets := map[string]string{
		TargetCursor: filepath.Join("~", ".cursor", "mcp.json"),
	}
	if dir, err := os.UserConfigDir(); err == nil {
		targets[TargetClaude] = filepath.Join(dir, "Claude", "claude_desktop_config.json")
	}
	return targets
}

// TargetList returns the configured targets with "~" expanded: cursor, claude,
// then the remaining names sorted. Targets with an empty path are skipped.
func (c *Config) TargetList() []types.Target {
	names := make([]string, 0, len(c.Targets))
	for _, n := range builtinOrder {
		if _, ok := c.Targets[n]; ok {
			names = append(names, n)
		}
	}
	var extra []string
	for n := range c.Targets {
		if n != TargetCursor && n != TargetClaude {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	out := make([]types.Target, 0, len(names))
	for _, n := range names {
		if c.Targets[n] == "" {
			continue
		}
		out = append(out, types.Target{Name: n, Path: ExpandHome(c.Targets[n])})
	}
	return out
}

func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
