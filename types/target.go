package types

// Target is an external configuration file the publisher writes to.
type Target struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// TargetOutcome is the result of publishing to one target.
type TargetOutcome struct {
	Target string `json:"target"`
	Path   string `json:"path,omitempty"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}
