package types

import (
	"sort"
	"strings"
)

// ServerDefinition is the commonly used subset of one mcpServers entry. It is
// only read for display; stored entries keep every field they carry.
type ServerDefinition struct {
	URL     string            `json:"url,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Endpoint is the URL, or the command line when there is no URL.
func (c *ServerDefinition) Endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	return strings.TrimSpace(strings.Join(append([]string{c.Command}, c.Args...), " "))
}

// GetEnvs returns the environment variable names, sorted.
func (c *ServerDefinition) GetEnvs() []string {
	list := make([]string, 0, len(c.Env))
	for s := range c.Env {
		list = append(list, s)
	}
	sort.Strings(list)
	return list
}
