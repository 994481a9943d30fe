package checker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nitpick/internal/docscan"
	"nitpick/internal/exceptions"
	"nitpick/internal/inventory"
)

func testInventory() *inventory.Inventory {
	return inventory.Rebuild("objects.inv", "proj", "1.0", []inventory.Object{
		{Name: "astropy.table.Table", Domain: "py", Role: "class", Priority: 1},
		{Name: "astropy.table.Table.copy", Domain: "py", Role: "method", Priority: 1},
	})
}

func testExceptions(t *testing.T) *exceptions.Set {
	t.Helper()
	set, diags, err := exceptions.Parse(strings.NewReader(
		"py:class astropy.cosmology.Cosmology\npy:obj dtype\npy:class never.Used\n"), "test")
	require.NoError(t, err)
	require.Empty(t, diags)
	return set
}

func ref(domain, role, target string) docscan.Ref {
	return docscan.Ref{Domain: domain, Role: role, Target: target, File: "docs/index.rst", Line: 1}
}

func TestCheck_Classification(t *testing.T) {
	c := New([]*inventory.Inventory{testInventory()}, testExceptions(t), zap.NewNop())

	result := c.Check([]docscan.Ref{
		ref("py", "class", "astropy.table.Table"),         // resolved
		ref("py", "obj", "astropy.table.Table.copy"),      // resolved via generic role
		ref("py", "class", "astropy.cosmology.Cosmology"), // unresolved, exempted
		ref("py", "obj", "dtype"),                         // unresolved, exempted
		ref("py", "class", "astropy.cosmology.Foo"),       // unresolved, warned
	})

	assert.Equal(t, 5, result.RefsTotal)
	assert.Equal(t, 2, result.Resolved)
	require.Len(t, result.Suppressed, 2)
	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, "astropy.cosmology.Foo", result.Unresolved[0].Ref.Target)
	assert.True(t, result.Failed())

	// Exceptions that never fired are reported for lint.
	require.Len(t, result.Unused, 1)
	assert.Equal(t, "never.Used", result.Unused[0].Name)
}

func TestCheck_DomainTagMustMatchExactly(t *testing.T) {
	c := New(nil, testExceptions(t), zap.NewNop())

	// The exemption is py:class; a py:obj reference to the same identifier
	// is a different domain-tag and must still warn.
	result := c.Check([]docscan.Ref{ref("py", "obj", "astropy.cosmology.Cosmology")})
	require.Len(t, result.Unresolved, 1)
	assert.False(t, result.Unresolved[0].Suppressed)
}

func TestCheck_NilExceptionSet(t *testing.T) {
	c := New([]*inventory.Inventory{testInventory()}, nil, zap.NewNop())
	result := c.Check([]docscan.Ref{ref("py", "class", "missing.Thing")})
	assert.True(t, result.Failed())
	assert.Empty(t, result.Unused)
	assert.Empty(t, result.Suppressed)
}

func TestCheck_NoRefs(t *testing.T) {
	c := New(nil, testExceptions(t), zap.NewNop())
	result := c.Check(nil)
	assert.False(t, result.Failed())
	assert.Equal(t, 0, result.RefsTotal)
	// With nothing scanned every exception is unused.
	assert.Len(t, result.Unused, 3)
}

func TestCheck_MultipleInventories(t *testing.T) {
	second := inventory.Rebuild("other.inv", "other", "1.0", []inventory.Object{
		{Name: "numpy.ndarray", Domain: "py", Role: "class", Priority: 1},
	})
	c := New([]*inventory.Inventory{testInventory(), second}, nil, zap.NewNop())

	result := c.Check([]docscan.Ref{
		ref("py", "class", "numpy.ndarray"),
		ref("py", "class", "astropy.table.Table"),
	})
	assert.Equal(t, 2, result.Resolved)
	assert.False(t, result.Failed())
}
