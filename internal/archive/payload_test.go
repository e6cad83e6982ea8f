package archive_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hadespm/hades/internal/archive"
	"github.com/hadespm/hades/internal/archive/rpmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles(t *testing.T) {
	path := rpmtest.Write(t, t.TempDir(), "foo.rpm", fooPackage)

	files, err := archive.Files(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./usr/bin/foo", "./usr/share/doc/foo/README"}, files)
}

func TestFiles_EmptyPayload(t *testing.T) {
	pkg := fooPackage
	pkg.Files = nil
	path := rpmtest.Write(t, t.TempDir(), "empty.rpm", pkg)

	files, err := archive.Files(path)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestExtractPayload(t *testing.T) {
	path := rpmtest.Write(t, t.TempDir(), "foo.rpm", fooPackage)
	dest := filepath.Join(t.TempDir(), "root")

	require.NoError(t, archive.ExtractPayload(path, dest))

	got, err := os.ReadFile(filepath.Join(dest, "usr", "bin", "foo"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho foo\n", string(got))

	got, err = os.ReadFile(filepath.Join(dest, "usr", "share", "doc", "foo", "README"))
	require.NoError(t, err)
	assert.Equal(t, "read me", string(got))
}
