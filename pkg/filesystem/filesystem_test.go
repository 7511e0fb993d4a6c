package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	fsys := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	require.NoError(t, filesystem.WriteFileAtomic(fsys, path, []byte(`{"a":1}`), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLinkPointsTo(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()
	source := filepath.Join(dir, "src")
	other := filepath.Join(dir, "other")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("y"), 0644))

	abs := filepath.Join(dir, "abs")
	require.NoError(t, os.Symlink(source, abs))
	rel := filepath.Join(dir, "rel")
	require.NoError(t, os.Symlink("src", rel))
	wrong := filepath.Join(dir, "wrong")
	require.NoError(t, os.Symlink(other, wrong))

	assert.True(t, filesystem.LinkPointsTo(fsys, abs, source))
	assert.True(t, filesystem.LinkPointsTo(fsys, rel, source))
	assert.False(t, filesystem.LinkPointsTo(fsys, wrong, source))
	assert.False(t, filesystem.LinkPointsTo(fsys, source, source), "regular file is not a link")
	assert.False(t, filesystem.LinkPointsTo(fsys, filepath.Join(dir, "missing"), source))
}
