package mcp

import (
	"testing"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  // servers launched by the desktop app
  "mcpServers": {
    "notes": {
      "command": "/Users/alice/.local/bin/notes-mcp",
      "args": ["--root", "/Users/alice/notes"],
      "env": {"NOTES_HOME": "/Users/alice/notes", "MODE": "ro"},
    },
    "fetch": {
      "command": "uvx",
      "args": ["mcp-server-fetch"]
    }
  }
}`

func TestParseAcceptsCommentsAndTrailingCommas(t *testing.T) {
	doc, err := Parse("cfg.json", "", []byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, DefaultServersKey, doc.Key)
	assert.NotContains(t, doc.Content, "//")

	servers := doc.Servers()
	require.Len(t, servers, 2)
	assert.Equal(t, "fetch", servers[0].Name)
	assert.Equal(t, "notes", servers[1].Name)
	assert.Equal(t, "/Users/alice/.local/bin/notes-mcp", servers[1].Command)
	assert.Equal(t, []string{"--root", "/Users/alice/notes"}, servers[1].Args)
	assert.Equal(t, "ro", servers[1].Env["MODE"])
	assert.Nil(t, servers[0].Env)
}

func TestParseRejectsBrokenJSON(t *testing.T) {
	_, err := Parse("cfg.json", "", []byte(`{"mcpServers": `))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMCPConfig))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir()+"/nope.json", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMCPConfig))
}

func TestLoadFromDisk(t *testing.T) {
	path := testutil.CreateFile(t, t.TempDir(), "claude_desktop_config.json", sampleConfig)
	doc, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Len(t, doc.Servers(), 2)
}

func TestProblems(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"valid", `{"mcpServers": {"a": {"command": "x"}}}`, nil},
		{"remote server", `{"mcpServers": {"a": {"url": "https://example.com/mcp"}}}`, nil},
		{"missing key", `{"other": {}}`, []string{`no "mcpServers" object`}},
		{"not an object", `{"mcpServers": []}`, []string{`"mcpServers" is not an object`}},
		{"no command", `{"mcpServers": {"a": {"args": []}}}`, []string{`server "a" has no command`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("cfg.json", "", []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Problems())
		})
	}
}

func TestCustomKeyWithDots(t *testing.T) {
	doc, err := Parse("cfg.json", "servers.v1", []byte(`{"servers.v1": {"a": {"command": "x"}}}`))
	require.NoError(t, err)
	require.Len(t, doc.Servers(), 1)
	assert.Equal(t, "a", doc.Servers()[0].Name)
}

func TestEscapeKey(t *testing.T) {
	assert.Equal(t, "plain", EscapeKey("plain"))
	assert.Equal(t, `a\.b`, EscapeKey("a.b"))
	assert.Equal(t, `x\*\?`, EscapeKey("x*?"))
	assert.Equal(t, `mcpServers.my\.server`, ServerPath("mcpServers", "my.server"))
}
