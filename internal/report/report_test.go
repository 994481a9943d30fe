package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nitpick/internal/checker"
	"nitpick/internal/docscan"
	"nitpick/internal/exceptions"
)

func sampleResult() *checker.Result {
	return &checker.Result{
		RefsTotal: 4,
		Resolved:  2,
		Unresolved: []checker.Finding{
			{Ref: docscan.Ref{Domain: "py", Role: "class", Target: "missing.Thing", File: "docs/index.rst", Line: 12}},
		},
		Suppressed: []checker.Finding{
			{Ref: docscan.Ref{Domain: "py", Role: "obj", Target: "dtype", File: "docs/api.rst", Line: 3}, Suppressed: true},
		},
		Unused: []exceptions.Entry{
			{Domain: "py:class", Name: "never.Used", Line: 7},
		},
	}
}

func TestRender_Plain(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, true)
	require.NoError(t, r.Render(sampleResult(), false))

	out := buf.String()
	assert.Contains(t, out, "docs/index.rst:12: unresolved reference py:class `missing.Thing`")
	assert.NotContains(t, out, "dtype", "suppressed refs only shown with verbose")
	assert.Contains(t, out, "references checked: 4")
	assert.Contains(t, out, "unused exceptions:")
	assert.NotContains(t, out, "\x1b[", "plain mode must not emit escape codes")
}

func TestRender_Verbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).Render(sampleResult(), true))
	assert.Contains(t, buf.String(), "suppressed py:obj `dtype`")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).RenderJSON(sampleResult()))

	var got struct {
		RefsTotal  int  `json:"refs_total"`
		Failed     bool `json:"failed"`
		Unresolved []struct {
			Tag    string `json:"tag"`
			Target string `json:"target"`
			Line   int    `json:"line"`
		} `json:"unresolved"`
		Unused []struct {
			Name string `json:"name"`
		} `json:"unused_exceptions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, 4, got.RefsTotal)
	assert.True(t, got.Failed)
	require.Len(t, got.Unresolved, 1)
	assert.Equal(t, "py:class", got.Unresolved[0].Tag)
	assert.Equal(t, 12, got.Unresolved[0].Line)
	require.Len(t, got.Unused, 1)
	assert.Equal(t, "never.Used", got.Unused[0].Name)
}
