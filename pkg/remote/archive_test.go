package remote_test

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/remote"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArchive(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFile(t, root, "zsh/zshrc", "plugins=(git)\n")
	testutil.CreateFile(t, root, "tmux/tmux.conf", "set -g mouse on\n")
	testutil.CreateFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	testutil.CreateFile(t, root, "zsh/.zshrc.swp", "junk")
	testutil.CreateFile(t, root, "node_modules/x/index.js", "junk")
	require.NoError(t, os.Symlink("zsh/zshrc", filepath.Join(root, "zshrc-link")))

	var buf bytes.Buffer
	require.NoError(t, remote.WriteArchive(&buf, root, []string{"*.swp", "node_modules/"}))
	names, contents, links := readArchive(t, &buf)

	assert.Equal(t, []string{"tmux/", "tmux/tmux.conf", "zsh/", "zsh/zshrc", "zshrc-link"}, names)
	assert.Equal(t, "plugins=(git)\n", contents["zsh/zshrc"])
	assert.Equal(t, "zsh/zshrc", links["zshrc-link"])
}

func TestWriteArchiveSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	testutil.CreateFile(t, target, "zsh/zshrc", "plugins=(git)\n")
	root := filepath.Join(t.TempDir(), "dotfiles")
	require.NoError(t, os.Symlink(target, root))

	var buf bytes.Buffer
	require.NoError(t, remote.WriteArchive(&buf, root, nil))
	names, contents, _ := readArchive(t, &buf)

	assert.Equal(t, []string{"zsh/", "zsh/zshrc"}, names)
	assert.Equal(t, "plugins=(git)\n", contents["zsh/zshrc"])
}

func readArchive(t *testing.T, r io.Reader) (names []string, contents, links map[string]string) {
	t.Helper()
	gz, err := gzip.NewReader(r)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	contents = map[string]string{}
	links = map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			require.NoError(t, err)
			contents[hdr.Name] = string(data)
		case tar.TypeSymlink:
			links[hdr.Name] = hdr.Linkname
		}
	}
	sort.Strings(names)
	return names, contents, links
}

func TestWriteArchiveMissingRoot(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, remote.WriteArchive(&buf, filepath.Join(t.TempDir(), "nope"), nil))
}
