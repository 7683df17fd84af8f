package types

import "encoding/json"

// AgentFile is one {name, content} entry of an agent envelope. Content holds
// a composite document.
type AgentFile struct {
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content"`
}

// AgentEnvelope is the on-disk shape of an agent file.
type AgentEnvelope struct {
	Description string      `json:"description,omitempty"`
	Files       []AgentFile `json:"files"`
}

type Agent struct {
	Name string `json:"name"`
	AgentEnvelope
}
