package exceptions

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_Sections(t *testing.T) {
	input := `# astropy.cosmology
py:class astropy.cosmology.Cosmology
py:class astropy.cosmology.core.Cosmology

# numpy quirks
# (inherited docstrings)
py:obj dtype
`
	f, diags, err := parseFile(strings.NewReader(input), "test")
	require.NoError(t, err)
	assert.Empty(t, diags)

	require.Len(t, f.Sections, 2)
	assert.Equal(t, []string{"astropy.cosmology"}, f.Sections[0].Header)
	assert.Len(t, f.Sections[0].Entries, 2)
	assert.Equal(t, []string{"numpy quirks", "(inherited docstrings)"}, f.Sections[1].Header)
	assert.Len(t, f.Sections[1].Entries, 1)
}

func TestFormat_SortsAndDeduplicates(t *testing.T) {
	input := `# section
py:obj b
py:class z.Z
py:class a.A
py:obj b
`
	f, _, err := parseFile(strings.NewReader(input), "test")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf))

	want := `# section
py:class a.A
py:class z.Z
py:obj b
`
	assert.Equal(t, want, buf.String())
}

func TestFormat_RoundTripStable(t *testing.T) {
	input := `# one
py:class b.B
py:class a.A

# two
py:obj x
`
	f, _, err := parseFile(strings.NewReader(input), "test")
	require.NoError(t, err)

	var first bytes.Buffer
	require.NoError(t, f.Format(&first))

	f2, diags, err := parseFile(bytes.NewReader(first.Bytes()), "test")
	require.NoError(t, err)
	assert.Empty(t, diags)

	var second bytes.Buffer
	require.NoError(t, f2.Format(&second))
	assert.Equal(t, first.String(), second.String())
}

func TestFlatten_MatchesParse(t *testing.T) {
	f, _, err := parseFile(strings.NewReader(sampleList), "test")
	require.NoError(t, err)

	direct, _, err := Parse(strings.NewReader(sampleList), "test")
	require.NoError(t, err)

	assert.True(t, f.Flatten().Equal(direct))
}
