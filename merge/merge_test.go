package merge

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
)

func compact(t *testing.T, c *Composite) string {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	return string(data)
}

func TestMerge_LaterWins(t *testing.T) {
	c, err := Texts(
		`{"mcpServers":{"a":{"x":1}}}`,
		`{"mcpServers":{"a":{"x":2},"b":{"y":1}}}`,
	)
	require.NoError(t, err)

	assert.JSONEq(t, `{"mcpServers":{"a":{"x":2},"b":{"y":1}}}`, compact(t, c))
}

func TestMerge_ShallowReplace(t *testing.T) {
	c, err := Texts(
		`{"mcpServers":{"fs":{"command":"npx","args":["a"],"env":{"K":"1"}}}}`,
		`{"mcpServers":{"fs":{"command":"uvx"}}}`,
	)
	require.NoError(t, err)

	def, ok := c.Get("fs")
	require.True(t, ok)
	assert.JSONEq(t, `{"command":"uvx"}`, string(def))
}

func TestMerge_FirstInsertionOrder(t *testing.T) {
	c, err := Texts(
		`{"mcpServers":{"zeta":{},"alpha":{}}}`,
		`{"mcpServers":{"mid":{},"zeta":{"v":2}}}`,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, c.Servers())
	assert.Equal(t, `{"mcpServers":{"zeta":{"v":2},"alpha":{},"mid":{}}}`, compact(t, c))
}

func TestMerge_Deterministic(t *testing.T) {
	inputs := []string{
		`{"mcpServers":{"c":{"n":1},"a":{"n":2},"b":{"n":3}}}`,
		`{"mcpServers":{"d":{"n":4},"a":{"n":5}}}`,
	}

	first, err := Texts(inputs...)
	require.NoError(t, err)
	want, err := first.Indent()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		c, err := Texts(inputs...)
		require.NoError(t, err)
		got, err := c.Indent()
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func TestMerge_Associative(t *testing.T) {
	a := Text(`{"mcpServers":{"a":{"x":1},"b":{"x":1}}}`)
	b := Text(`{"mcpServers":{"b":{"x":2},"c":{"x":2}}}`)
	c := Text(`{"mcpServers":{"a":{"x":3},"d":{"x":3}}}`)

	all, err := Merge(a, b, c)
	require.NoError(t, err)

	ab, err := Merge(a, b)
	require.NoError(t, err)
	nested, err := Merge(Value(ab), c)
	require.NoError(t, err)

	assert.Equal(t, compact(t, all), compact(t, nested))
}

func TestMerge_MissingOrEmptyServers(t *testing.T) {
	c, err := Merge(
		Text(`{"other":true}`),
		Text(`{"mcpServers":null}`),
		Text(`[1,2]`),
		Text(`"just a string"`),
		Value(nil),
		Value(map[string]any{"mcpServers": map[string]any{"s": map[string]any{"url": "http://x"}}}),
	)
	require.NoError(t, err)

	assert.Equal(t, `{"mcpServers":{"s":{"url":"http://x"}}}`, compact(t, c))
}

func TestMerge_NoInput(t *testing.T) {
	c, err := Merge()
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	out, err := c.Indent()
	require.NoError(t, err)
	assert.JSONEq(t, `{"mcpServers":{}}`, string(out))
}

func TestMerge_InvalidInputAborts(t *testing.T) {
	c, err := Merge(
		Text(`{"mcpServers":{"a":{}}}`),
		Text(`{invalid`).Named("broken.json"),
		Text(`{"mcpServers":{"b":{}}}`),
	)
	assert.Nil(t, c)
	require.Error(t, err)

	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, 1, inErr.Index)
	assert.True(t, errors.Is(err, errs.ErrInvalidFormat))
	assert.Contains(t, err.Error(), "broken.json")
}

func TestMerge_EmptyTextIsInvalid(t *testing.T) {
	_, err := Texts(``)
	assert.True(t, errors.Is(err, errs.ErrInvalidFormat))
}

func TestMerge_ServersNotObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `{"mcpServers":[]}`},
		{"string", `{"mcpServers":"x"}`},
		{"number", `{"mcpServers":3}`},
		{"bool", `{"mcpServers":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Texts(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidFormat))
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	raw := []byte(`{"mcpServers":{"a":{"x":1}}}`)
	orig := string(raw)
	val := map[string]any{"mcpServers": map[string]any{"b": map[string]any{"x": 2.0}}}

	c, err := Merge(Bytes(raw), Value(val))
	require.NoError(t, err)

	assert.Equal(t, orig, string(raw))
	assert.Equal(t, map[string]any{"mcpServers": map[string]any{"b": map[string]any{"x": 2.0}}}, val)

	// the composite does not alias the input buffer
	raw[len(raw)-4] = '9'
	def, _ := c.Get("a")
	assert.JSONEq(t, `{"x":1}`, string(def))
}

func TestComposite_Indent(t *testing.T) {
	c, err := Texts(`{"mcpServers":{"a":{"x":1}}}`)
	require.NoError(t, err)

	out, err := c.Indent()
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"mcpServers\": {\n    \"a\": {\n      \"x\": 1\n    }\n  }\n}", string(out))
}
