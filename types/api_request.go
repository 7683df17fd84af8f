package types

import "encoding/json"

// SaveFragmentRequest PUT /api/fragments/:name
type SaveFragmentRequest struct {
	Content      string `json:"content"`
	Description  string `json:"description"`
	PreviousName string `json:"previousName,omitempty"`
}

// SaveAgentRequest PUT /api/agents/:name
//
// When Content is set the agent is edited from that composite, otherwise it is
// built by merging Fragments (none gives a blank agent).
type SaveAgentRequest struct {
	Description  string          `json:"description"`
	Content      json.RawMessage `json:"content,omitempty"`
	Fragments    []string        `json:"fragments,omitempty"`
	PreviousName string          `json:"previousName,omitempty"`
}

// MergeRequest POST /api/merge
type MergeRequest struct {
	Fragments []string `json:"fragments"`
}

// ApplyRequest is used by the agent and session apply endpoints. Current names
// the fragment used when the session selection is empty.
type ApplyRequest struct {
	Targets []string `json:"targets,omitempty"`
	Current string   `json:"current,omitempty"`
}

// SaveSelectionRequest POST /api/sessions/:id/agents
type SaveSelectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Current     string `json:"current,omitempty"`
}

type ApplyResponse struct {
	Composite json.RawMessage `json:"composite"`
	Targets   []TargetOutcome `json:"targets"`
}

type SessionResponse struct {
	ID       string   `json:"id"`
	Selected []string `json:"selected"`
}
