package dotsync

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/remote"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	home := testutil.Home(t)
	p, err := paths.New(filepath.Join(home, "dotfiles"))
	require.NoError(t, err)
	return &app{paths: p, cfg: cfg, runner: testutil.NewFakeRunner()}
}

func TestRootCmdWiring(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"sync", "push", "install", "mcp", "templates", "analyze", "generate", "config", "version", "completion", "man"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"verbose", "dry-run", "format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	syncCmd, _, err := root.Find([]string{"sync"})
	require.NoError(t, err)
	for _, flag := range []string{"local", "enhanced", "yes", "host"} {
		assert.NotNil(t, syncCmd.Flags().Lookup(flag), flag)
	}
	assert.Equal(t, "core", syncCmd.GroupID)

	installCmd, _, err := root.Find([]string{"install"})
	require.NoError(t, err)
	for _, flag := range []string{"check", "host"} {
		assert.NotNil(t, installCmd.Flags().Lookup(flag), flag)
	}

	mcpCmd, _, err := root.Find([]string{"mcp"})
	require.NoError(t, err)
	var subs []string
	for _, c := range mcpCmd.Commands() {
		subs = append(subs, c.Name())
	}
	assert.ElementsMatch(t, []string{"servers", "path", "validate", "fix-paths", "logs", "grep", "cli"}, subs)
}

func TestRootCmdNoArgs(t *testing.T) {
	testutil.Home(t)
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgErrNoCommand)
	assert.Contains(t, out.String(), "COMMANDS:")
}

func TestAnalyzeFormatShadowsGlobal(t *testing.T) {
	root := NewRootCmd()
	analyzeCmd, _, err := root.Find([]string{"analyze"})
	require.NoError(t, err)

	local := analyzeCmd.Flags().Lookup("format")
	require.NotNil(t, local)
	assert.Equal(t, "json", local.DefValue)
	assert.Equal(t, "", root.PersistentFlags().Lookup("format").DefValue)
}

func TestSelectHosts(t *testing.T) {
	a := testApp(t, &config.Config{Remote: config.RemoteConfig{Hosts: []types.Host{
		{Name: "oracle"},
		{Name: "evertz", Alias: "ev"},
	}}})

	t.Run("all when none named", func(t *testing.T) {
		hosts, err := a.selectHosts(nil)
		require.NoError(t, err)
		assert.Len(t, hosts, 2)
	})

	t.Run("by name or alias in given order", func(t *testing.T) {
		hosts, err := a.selectHosts([]string{"ev", "oracle"})
		require.NoError(t, err)
		require.Len(t, hosts, 2)
		assert.Equal(t, "evertz", hosts[0].Name)
		assert.Equal(t, "oracle", hosts[1].Name)
	})

	t.Run("unknown host", func(t *testing.T) {
		_, err := a.selectHosts([]string{"nowhere"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}

func TestSelectTools(t *testing.T) {
	a := testApp(t, &config.Config{Install: config.InstallConfig{Tools: []types.Tool{
		{Name: "ripgrep", Binaries: []string{"rg"}},
		{Name: "fd"},
	}}})

	assert.Len(t, a.selectTools(nil), 2)

	tools := a.selectTools([]string{"ripgrep", "htop"})
	require.Len(t, tools, 2)
	assert.Equal(t, []string{"rg"}, tools[0].Binaries)
	assert.Equal(t, types.Tool{Name: "htop"}, tools[1])
}

func TestTransport(t *testing.T) {
	a := testApp(t, &config.Config{Remote: config.RemoteConfig{
		Transport:     config.TransportRsync,
		Excludes:      []string{".git"},
		KnownHosts:    "~/.ssh/known_hosts",
		IdentityFiles: []string{"~/.ssh/id_ed25519"},
	}})

	tr, err := a.transport("")
	require.NoError(t, err)
	rsync, ok := tr.(*remote.RsyncTransport)
	require.True(t, ok)
	assert.Equal(t, []string{".git"}, rsync.Excludes)

	tr, err = a.transport(config.TransportNative)
	require.NoError(t, err)
	native, ok := tr.(*remote.NativeTransport)
	require.True(t, ok)
	home := a.paths.HomeDir()
	assert.Equal(t, filepath.Join(home, ".ssh", "known_hosts"), native.KnownHosts)
	assert.Equal(t, []string{filepath.Join(home, ".ssh", "id_ed25519")}, native.IdentityFiles)

	_, err = a.transport("pigeon")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestMappingTarget(t *testing.T) {
	a := testApp(t, &config.Config{Sync: config.SyncConfig{Mappings: []types.Mapping{
		{Name: "zshrc", Source: "zsh/zshrc", Target: "~/.config/zsh/.zshrc"},
	}}})
	home := a.paths.HomeDir()

	assert.Equal(t, filepath.Join(home, ".config", "zsh", ".zshrc"), a.mappingTarget("zshrc", "~/.zshrc"))
	assert.Equal(t, filepath.Join(home, ".tmux.conf"), a.mappingTarget("tmux", "~/.tmux.conf"))
}

func TestMCPLocations(t *testing.T) {
	a := testApp(t, &config.Config{MCP: config.MCPConfig{
		Source:     "claude/claude_desktop_config.json",
		ConfigPath: "~/app/config.json",
		LogDir:     "~/app/logs",
		ServersKey: "mcpServers",
	}})
	home := a.paths.HomeDir()

	assert.Equal(t, filepath.Join(home, "app", "config.json"), a.mcpConfigPath())
	assert.Equal(t, filepath.Join(home, "app", "logs"), a.mcpLogs().Dir)

	d := a.mcpDeployer()
	assert.Equal(t, filepath.Join(home, "dotfiles", "claude", "claude_desktop_config.json"), d.Source)
	assert.Equal(t, a.mcpConfigPath(), d.Target)
	assert.Equal(t, home, d.Home)
}

func TestGenerateFiles(t *testing.T) {
	a := testApp(t, &config.Config{Sync: config.SyncConfig{Mappings: []types.Mapping{
		{Name: "zshrc", Source: "shell/zshrc", Target: "~/.zshrc"},
	}}})
	root := a.paths.DotfilesRoot()

	files := a.generateFiles(nil)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(root, "shell", "zshrc"), files[0].Path, "mapping source wins")
	assert.Equal(t, filepath.Join(root, "tmux", "tmux.conf"), files[1].Path)
	assert.Equal(t, "starship", files[2].Name)

	files = a.generateFiles([]string{"tmux"})
	require.Len(t, files, 1)
	assert.Equal(t, "tmux", files[0].Name)
}
