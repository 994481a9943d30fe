package inventory

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildV2(t *testing.T, project, version string, records []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Sphinx inventory version 2\n")
	fmt.Fprintf(&buf, "# Project: %s\n", project)
	fmt.Fprintf(&buf, "# Version: %s\n", version)
	fmt.Fprintf(&buf, "# The remainder of this file is compressed using zlib.\n")
	zw := zlib.NewWriter(&buf)
	for _, r := range records {
		fmt.Fprintln(zw, r)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRead_V2(t *testing.T) {
	data := buildV2(t, "astropy", "5.0", []string{
		"astropy.cosmology.Cosmology py:class 1 api/astropy.cosmology.Cosmology.html#$ -",
		"astropy.cosmology.Cosmology.clone py:method 1 api/astropy.cosmology.Cosmology.html#astropy.cosmology.Cosmology.clone -",
		"whatsnew py:module 0 whatsnew/index.html#module-whatsnew What's New",
	})

	inv, err := Read(bytes.NewReader(data), "objects.inv")
	require.NoError(t, err)

	assert.Equal(t, "astropy", inv.Project)
	assert.Equal(t, "5.0", inv.Version)
	assert.Equal(t, 3, inv.Len())

	obj, ok := inv.Resolve("py", "class", "astropy.cosmology.Cosmology")
	require.True(t, ok)
	assert.Equal(t, "api/astropy.cosmology.Cosmology.html#astropy.cosmology.Cosmology", obj.Location)
	assert.Equal(t, "astropy.cosmology.Cosmology", obj.DispName)

	disp, ok := inv.Resolve("py", "module", "whatsnew")
	require.True(t, ok)
	assert.Equal(t, "What's New", disp.DispName)

	_, ok = inv.Resolve("py", "class", "astropy.cosmology.Missing")
	assert.False(t, ok)
	_, ok = inv.Resolve("std", "class", "astropy.cosmology.Cosmology")
	assert.False(t, ok)
}

func TestRead_V2_NameWithSpaces(t *testing.T) {
	// std domain labels may carry spaces in the name field; the record
	// pattern matches the name lazily so the rest still parses.
	data := buildV2(t, "proj", "1.0", []string{
		"Building from source std:label 1 install.html#building-from-source -",
		"whats new std:label -1 whatsnew.html#whats-new What's new",
	})

	inv, err := Read(bytes.NewReader(data), "objects.inv")
	require.NoError(t, err)

	_, ok := inv.Resolve("std", "label", "whats new")
	assert.True(t, ok)
	obj, ok := inv.Resolve("std", "label", "Building from source")
	require.True(t, ok)
	assert.Equal(t, 1, obj.Priority)
}

func TestResolve_ObjRoleMatchesAnyRole(t *testing.T) {
	data := buildV2(t, "proj", "1.0", []string{
		"pkg.Thing py:class 1 api.html#$ -",
		"pkg.Thing.run py:method 1 api.html#$ -",
	})
	inv, err := Read(bytes.NewReader(data), "objects.inv")
	require.NoError(t, err)

	_, ok := inv.Resolve("py", "obj", "pkg.Thing")
	assert.True(t, ok, "generic object reference must match a class")
	_, ok = inv.Resolve("py", "obj", "pkg.Thing.run")
	assert.True(t, ok, "generic object reference must match a method")
	_, ok = inv.Resolve("py", "method", "pkg.Thing")
	assert.False(t, ok, "specific role must still match exactly")
}

func TestRead_V1(t *testing.T) {
	input := "# Sphinx inventory version 1\n# Project: old\n# Version: 0.1\npkg mod guide.html\npkg.Thing class api.html\n"
	inv, err := Read(strings.NewReader(input), "objects.inv")
	require.NoError(t, err)

	obj, ok := inv.Resolve("py", "module", "pkg")
	require.True(t, ok)
	assert.Equal(t, "guide.html#module-pkg", obj.Location)

	_, ok = inv.Resolve("py", "class", "pkg.Thing")
	assert.True(t, ok)
}

func TestRead_BadHeader(t *testing.T) {
	_, err := Read(strings.NewReader("not an inventory\n"), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized inventory header")
}

func TestWriteV2_RoundTrip(t *testing.T) {
	data := buildV2(t, "proj", "2.3", []string{
		"pkg.A py:class 1 api.html#$ -",
		"pkg.B py:function 1 api.html#$ Pretty B",
	})
	inv, err := Read(bytes.NewReader(data), "objects.inv")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inv.WriteV2(&out))

	again, err := Read(bytes.NewReader(out.Bytes()), "rewritten")
	require.NoError(t, err)
	assert.Equal(t, inv.Len(), again.Len())
	obj, ok := again.Resolve("py", "function", "pkg.B")
	require.True(t, ok)
	assert.Equal(t, "Pretty B", obj.DispName)
}

func TestFetch_LocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objects.inv")
	require.NoError(t, os.WriteFile(path, buildV2(t, "p", "1", []string{"pkg.A py:class 1 a.html#$ -"}), 0644))

	inv, err := Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Len())
	assert.Equal(t, path, inv.Source)
}

func TestFetch_HTTP(t *testing.T) {
	data := buildV2(t, "p", "1", []string{"pkg.A py:class 1 a.html#$ -"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	inv, err := Fetch(context.Background(), srv.URL+"/objects.inv")
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Len())

	srv404 := httptest.NewServer(http.NotFoundHandler())
	defer srv404.Close()
	_, err = Fetch(context.Background(), srv404.URL+"/objects.inv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
