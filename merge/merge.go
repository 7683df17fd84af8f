package merge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
)

const serversKey = "mcpServers"

// Document is one merge input: raw JSON text or an already decoded value.
type Document struct {
	label string
	raw   []byte
	value any
	isVal bool
}

func Text(s string) Document { return Document{raw: []byte(s)} }

func Bytes(b []byte) Document { return Document{raw: b} }

// Value wraps a decoded JSON value. nil contributes nothing to a merge.
func Value(v any) Document { return Document{value: v, isVal: true} }

// Named attaches a label (usually a fragment name) used in error messages.
func (d Document) Named(label string) Document {
	d.label = label
	return d
}

func (d Document) bytes() ([]byte, error) {
	if !d.isVal {
		return d.raw, nil
	}
	return json.Marshal(d.value)
}

// InputError reports which input of a merge could not be used.
type InputError struct {
	Index int
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("merge input %d: %v", e.Index, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Composite is the merged {"mcpServers": {...}} document. Servers keep the
// position of their first occurrence.
type Composite struct {
	MCPServers *orderedmap.OrderedMap[string, json.RawMessage] `json:"mcpServers"`
}

func NewComposite() *Composite {
	return &Composite{MCPServers: orderedmap.New[string, json.RawMessage]()}
}

func (c *Composite) Len() int { return c.MCPServers.Len() }

// Servers returns server names in output order.
func (c *Composite) Servers() []string {
	names := make([]string, 0, c.MCPServers.Len())
	for pair := c.MCPServers.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func (c *Composite) Get(name string) (json.RawMessage, bool) {
	return c.MCPServers.Get(name)
}

// Indent renders the composite the way it is written to disk.
func (c *Composite) Indent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Merge folds docs left to right into a new composite. For a server name seen
// more than once the later definition replaces the earlier one as a whole.
//
// A document that is not valid JSON aborts the merge with an *InputError.
// Documents whose root is not an object, or which carry no mcpServers, add
// nothing. An mcpServers value that is neither an object nor null is invalid.
func Merge(docs ...Document) (*Composite, error) {
	out := NewComposite()
	for i, doc := range docs {
		data, err := doc.bytes()
		if err != nil {
			return nil, &InputError{Index: i, Err: errs.InvalidFormat("merge", doc.label, err)}
		}
		if !gjson.ValidBytes(data) {
			return nil, &InputError{Index: i, Err: errs.InvalidFormat("merge", doc.label, errors.New("malformed JSON"))}
		}

		root := gjson.ParseBytes(data)
		if !root.IsObject() {
			continue
		}
		servers := root.Get(serversKey)
		if !servers.Exists() || servers.Type == gjson.Null {
			continue
		}
		if !servers.IsObject() {
			return nil, &InputError{Index: i, Err: errs.InvalidFormat("merge", doc.label, fmt.Errorf("%s is %s, want object", serversKey, kindOf(servers)))}
		}

		servers.ForEach(func(key, value gjson.Result) bool {
			out.MCPServers.Set(key.String(), json.RawMessage(value.Raw))
			return true
		})
	}
	return out, nil
}

// Texts merges raw JSON texts in order.
func Texts(texts ...string) (*Composite, error) {
	docs := make([]Document, len(texts))
	for i, t := range texts {
		docs[i] = Text(t)
	}
	return Merge(docs...)
}

func kindOf(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "an array"
	case r.Type == gjson.String:
		return "a string"
	case r.Type == gjson.Number:
		return "a number"
	case r.Type == gjson.True || r.Type == gjson.False:
		return "a boolean"
	}
	return r.Type.String()
}
