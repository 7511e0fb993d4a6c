package analyze

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const zshrc = `# managed by dotsync
plugins=(
  git
  zsh-autosuggestions
  fzf
)

export EDITOR="nvim"
export PATH=$HOME/.local/bin:$PATH
alias ll='eza -la'
alias cat="bat"
# alias old='ignored'

mkcd() {
  mkdir -p "$1" &&
    cd "$1"
}
`

const tmuxConf = `set -g prefix C-a
set-option -g mouse on
set -g default-terminal "tmux-256color"
bind r source-file ~/.tmux.conf
bind-key -n M-h select-pane -L
# bind x kill-pane
`

func TestParseZsh(t *testing.T) {
	r := ParseZsh(zshrc)

	assert.Equal(t, []string{"git", "zsh-autosuggestions", "fzf"}, r.Plugins)
	assert.Equal(t, map[string]string{"ll": "eza -la", "cat": "bat"}, r.Aliases)
	assert.Equal(t, "nvim", r.Exports["EDITOR"])
	assert.Equal(t, "$HOME/.local/bin:$PATH", r.Exports["PATH"])
	assert.Equal(t, `mkdir -p "$1" && cd "$1"`, r.Functions["mkcd"])
}

func TestParseZshEmpty(t *testing.T) {
	r := ParseZsh("")
	assert.Empty(t, r.Plugins)
	assert.NotNil(t, r.Plugins)
	assert.Empty(t, r.Aliases)
}

func TestParseTmux(t *testing.T) {
	r := ParseTmux(tmuxConf)

	assert.Equal(t, map[string]string{
		"prefix":           "C-a",
		"mouse":            "on",
		"default-terminal": "tmux-256color",
	}, r.Options)
	assert.Equal(t, map[string]string{
		"r":   "source-file ~/.tmux.conf",
		"M-h": "select-pane -L",
	}, r.Bindings)
}

func TestAnalyzerRun(t *testing.T) {
	home := t.TempDir()
	zshPath := testutil.CreateFile(t, home, ".zshrc", zshrc)

	a := &Analyzer{
		ZshrcPath: zshPath,
		TmuxPath:  filepath.Join(home, ".tmux.conf"),
		Tools: []types.Tool{
			{Name: "ripgrep", Binaries: []string{"rg"}},
			{Name: "bat", Binaries: []string{"bat", "batcat"}},
			{Name: "eza"},
		},
		Runner: testutil.NewFakeRunner("rg", "batcat"),
	}

	report, err := a.Run()
	require.NoError(t, err)
	assert.True(t, report.Zsh.Found)
	assert.Equal(t, zshPath, report.Zsh.Path)
	assert.False(t, report.Tmux.Found)
	assert.Empty(t, report.Tmux.Bindings)
	assert.Equal(t, []string{"ripgrep", "bat"}, report.Tools.Installed)
	assert.Equal(t, []string{"eza"}, report.Tools.Missing)
}

func TestWriteFormats(t *testing.T) {
	report := &Report{Zsh: ParseZsh(zshrc), Tmux: ParseTmux(tmuxConf)}

	var js bytes.Buffer
	require.NoError(t, Write(&js, report, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Contains(t, decoded, "zsh")

	var ym bytes.Buffer
	require.NoError(t, Write(&ym, report, "yaml"))
	var back Report
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, report.Tmux.Options, back.Tmux.Options)

	err := Write(&bytes.Buffer{}, report, "xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
