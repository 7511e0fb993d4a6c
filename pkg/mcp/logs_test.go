package mcp

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLogs(t *testing.T) (string, *Logs) {
	t.Helper()
	dir := t.TempDir()
	old := testutil.CreateFile(t, dir, "mcp-server-notes.log", "one\ntwo\nERROR boom\n")
	recent := testutil.CreateFile(t, dir, "mcp.log", "start\nerror: late\nend\n")
	testutil.CreateFile(t, dir, "main.log", "unrelated\n")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(recent, time.Now(), time.Now()))
	return dir, &Logs{Dir: dir}
}

func TestListNewestFirst(t *testing.T) {
	dir, logs := writeLogs(t)

	files, err := logs.List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "mcp.log"), files[0].Path)
	assert.Equal(t, filepath.Join(dir, "mcp-server-notes.log"), files[1].Path)
	assert.Equal(t, int64(len("start\nerror: late\nend\n")), files[0].Size)
}

func TestListMissingDir(t *testing.T) {
	logs := &Logs{Dir: filepath.Join(t.TempDir(), "absent")}
	_, err := logs.List()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMCPLogs))
}

func TestResolve(t *testing.T) {
	dir, logs := writeLogs(t)

	path, err := logs.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mcp.log"), path)

	path, err = logs.Resolve("mcp-server-notes.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mcp-server-notes.log"), path)

	path, err = logs.Resolve("/var/log/x.log")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/x.log", path)

	empty := &Logs{Dir: t.TempDir()}
	_, err = empty.Resolve("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrMCPLogs))
}

func TestTail(t *testing.T) {
	dir, _ := writeLogs(t)
	path := filepath.Join(dir, "mcp-server-notes.log")

	lines, err := Tail(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "ERROR boom"}, lines)

	lines, err = Tail(path, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "ERROR boom"}, lines)

	lines, err = Tail(path, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = Tail(filepath.Join(dir, "missing.log"), 3)
	assert.Error(t, err)
}

func TestGrep(t *testing.T) {
	dir, logs := writeLogs(t)
	files, err := logs.List()
	require.NoError(t, err)
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}

	matches, err := Grep(paths, "error", false)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, Match{File: filepath.Join(dir, "mcp.log"), Line: 2, Text: "error: late"}, matches[0])

	matches, err = Grep(paths, "error", true)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = Grep(paths, "(", false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

// syncBuffer is a bytes.Buffer safe for the follow goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowStreamsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := testutil.CreateFile(t, dir, "mcp.log", "before\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, out) }()

	// Give the watcher time to register before appending.
	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("after\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "after")
	}, 3*time.Second, 20*time.Millisecond)
	assert.NotContains(t, out.String(), "before")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Follow did not stop after cancel")
	}
}

func TestFollowMissingFile(t *testing.T) {
	err := Follow(context.Background(), filepath.Join(t.TempDir(), "nope.log"), &bytes.Buffer{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrMCPLogs))
}
