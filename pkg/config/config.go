// Package config loads dotsync configuration by layering the embedded
// defaults, the user config, the dotfiles root config and DOTSYNC_*
// environment variables.
package config

import (
	"time"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// Config is the merged configuration
type Config struct {
	Sync    SyncConfig    `koanf:"sync" toml:"sync"`
	Remote  RemoteConfig  `koanf:"remote" toml:"remote"`
	Install InstallConfig `koanf:"install" toml:"install"`
	MCP     MCPConfig     `koanf:"mcp" toml:"mcp"`
	Runner  RunnerConfig  `koanf:"runner" toml:"runner"`
	Output  OutputConfig  `koanf:"output" toml:"output"`
}

// SyncConfig drives the local sync engine
type SyncConfig struct {
	DotfilesDir string          `koanf:"dotfiles_dir" toml:"dotfiles_dir"`
	BackupRoot  string          `koanf:"backup_root" toml:"backup_root"`
	Mappings    []types.Mapping `koanf:"mappings" toml:"mappings"`
}

// RemoteConfig drives propagation to other machines
type RemoteConfig struct {
	Transport     string       `koanf:"transport" toml:"transport"`
	Confirm       bool         `koanf:"confirm" toml:"confirm"`
	Delete        bool         `koanf:"delete" toml:"delete"`
	RemoteDir     string       `koanf:"remote_dir" toml:"remote_dir"`
	Excludes      []string     `koanf:"excludes" toml:"excludes"`
	SyncCommand   string       `koanf:"sync_command" toml:"sync_command"`
	KnownHosts    string       `koanf:"known_hosts" toml:"known_hosts"`
	IdentityFiles []string     `koanf:"identity_files" toml:"identity_files"`
	BackupFiles   []string     `koanf:"backup_files" toml:"backup_files"`
	Hosts         []types.Host `koanf:"hosts" toml:"hosts"`
}

// InstallConfig lists the tools to install and how to find a package manager
type InstallConfig struct {
	Managers []string     `koanf:"managers" toml:"managers"`
	Sudo     bool         `koanf:"sudo" toml:"sudo"`
	Tools    []types.Tool `koanf:"tools" toml:"tools"`
}

// MCPConfig locates the desktop app's MCP configuration and logs
type MCPConfig struct {
	Source     string   `koanf:"source" toml:"source"`
	ConfigPath string   `koanf:"config_path" toml:"config_path"`
	LogDir     string   `koanf:"log_dir" toml:"log_dir"`
	ServersKey string   `koanf:"servers_key" toml:"servers_key"`
	CLI        []string `koanf:"cli" toml:"cli"`
	LogGlob    string   `koanf:"log_glob" toml:"log_glob"`
}

// RunnerConfig bounds external commands
type RunnerConfig struct {
	Timeout time.Duration `koanf:"timeout" toml:"timeout"`
}

// OutputConfig selects the default renderer
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"`
}

// Transports accepted by remote.transport
const (
	TransportRsync  = "rsync"
	TransportNative = "native"
)

// HostByName finds a configured host by name or alias
func (c *Config) HostByName(name string) (types.Host, bool) {
	for _, h := range c.Remote.Hosts {
		if h.Name == name || h.Alias == name {
			return h, true
		}
	}
	return types.Host{}, false
}

// ToolByName finds a configured tool by name
func (c *Config) ToolByName(name string) (types.Tool, bool) {
	for _, t := range c.Install.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return types.Tool{}, false
}
