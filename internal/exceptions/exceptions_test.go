package exceptions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleList = `# astropy.cosmology
py:class astropy.cosmology.Cosmology
py:class astropy.cosmology.core.Cosmology

# numpy inherited docstrings
py:obj dtype
py:obj a
py:class None.  Remove all items from D.
`

func TestParse_WellFormedLines(t *testing.T) {
	set, diags, err := Parse(strings.NewReader(sampleList), "test")
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, 5, set.Len())
	assert.True(t, set.Contains("py:class", "astropy.cosmology.Cosmology"))
	assert.True(t, set.Contains("py:class", "astropy.cosmology.core.Cosmology"))
	assert.True(t, set.Contains("py:obj", "dtype"))
	assert.False(t, set.Contains("py:class", "astropy.cosmology.Foo"))
	assert.False(t, set.Contains("py:obj", "astropy.cosmology.Cosmology"))
}

func TestParse_CommentsAndBlanksContributeNothing(t *testing.T) {
	input := "# header\n\n   \n# another comment\n\t\n"
	set, diags, err := Parse(strings.NewReader(input), "test")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, 0, set.Len())
}

func TestParse_FreeTextIdentifierKeptVerbatim(t *testing.T) {
	// Identifiers originating from docstring-parsing quirks are whole English
	// sentences. Only the first whitespace run separates tag from identifier.
	line := "py:class None.  Remove all items from D."
	set, diags, err := Parse(strings.NewReader(line), "test")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.True(t, set.Contains("py:class", "None.  Remove all items from D."))
	assert.False(t, set.Contains("py:class", "None."))
}

func TestParse_MalformedLineSkippedWithDiagnostic(t *testing.T) {
	input := "py:class good.Target\nmalformed-no-separator\npy:obj another.Target\n"
	set, diags, err := Parse(strings.NewReader(input), "docs/nitpick-exceptions")
	require.NoError(t, err)

	// The bad line must not disturb its neighbors.
	assert.True(t, set.Contains("py:class", "good.Target"))
	assert.True(t, set.Contains("py:obj", "another.Target"))
	assert.Equal(t, 2, set.Len())

	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, "malformed-no-separator", diags[0].Text)
	assert.Contains(t, diags[0].String(), "docs/nitpick-exceptions:2")
}

func TestParse_DuplicatesCollapse(t *testing.T) {
	withDup := "py:class a.B\npy:class a.B\npy:obj c\n"
	withoutDup := "py:class a.B\npy:obj c\n"

	s1, diags, err := Parse(strings.NewReader(withDup), "a")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "duplicate entry", diags[0].Reason)

	s2, _, err := Parse(strings.NewReader(withoutDup), "b")
	require.NoError(t, err)

	assert.Equal(t, 2, s1.Len())
	assert.True(t, s1.Equal(s2))
	assert.True(t, s2.Equal(s1))
}

func TestLoad_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nitpick-exceptions")
	require.NoError(t, os.WriteFile(path, []byte(sampleList), 0644))

	s1, _, err := Load(path)
	require.NoError(t, err)
	s2, _, err := Load(path)
	require.NoError(t, err)

	assert.True(t, s1.Equal(s2))
	if diff := cmp.Diff(s1.Entries(), s2.Entries()); diff != "" {
		t.Errorf("entries differ between loads (-first +second):\n%s", diff)
	}
}

func TestLoad_MissingFileIsDetectable(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "caller must be able to apply the optional-file policy")
}

func TestSet_EntriesSortedAndCopied(t *testing.T) {
	set, _, err := Parse(strings.NewReader("py:obj zz\npy:class aa\npy:class bb\n"), "test")
	require.NoError(t, err)

	entries := set.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "py:class", entries[0].Domain)
	assert.Equal(t, "aa", entries[0].Name)
	assert.Equal(t, "py:obj", entries[2].Domain)

	entries[0].Name = "mutated"
	assert.False(t, set.Contains("py:class", "mutated"))
	assert.Equal(t, []string{"py:class", "py:obj"}, set.Domains())
}

func TestSet_NilSafe(t *testing.T) {
	var s *Set
	assert.False(t, s.Contains("py:class", "x"))
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Entries())
}
