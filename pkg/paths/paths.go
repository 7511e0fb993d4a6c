// Package paths resolves every location dotsync touches: the dotfiles
// checkout, XDG config and state directories, and home-relative targets.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the primary environment variable for dotfiles location
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvConfigDir overrides the XDG config directory for dotsync
	EnvConfigDir = "DOTSYNC_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for dotsync
	EnvStateDir = logging.EnvStateDir

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// DefaultDotfilesDir is where the dotfiles checkout lives when nothing else says otherwise
	DefaultDotfilesDir = "~/dotfiles"

	// AppDirName is the directory name used under XDG base directories
	AppDirName = "dotsync"

	// UserConfigFile is the per-user configuration file name
	UserConfigFile = "config.toml"

	// BackupTimestampFormat names backup session directories
	BackupTimestampFormat = "20060102_150405"
)

// RootConfigFiles are looked up in the dotfiles root, first match wins
var RootConfigFiles = []string{".dotsync.toml", "dotsync.toml", "dotsync.yaml"}

// Paths provides centralized path management for dotsync
type Paths interface {
	DotfilesRoot() string
	UsedFallback() bool
	HomeDir() string
	ConfigDir() string
	StateDir() string
	UserConfigPath() string
	RootConfigPath() string
	LogFilePath() string
	Expand(path string) string
	Contract(path string) string
	ResolveSource(source string) string
}

type paths struct {
	dotfilesRoot string
	home         string
	xdgConfig    string
	xdgState     string
	usedFallback bool
}

// New creates a Paths instance. An empty dotfilesRoot is discovered from
// the environment, the default checkout, git, and finally the working dir.
func New(dotfilesRoot string) (Paths, error) {
	home, err := UserHome()
	if err != nil {
		return nil, err
	}
	p := &paths{home: home}

	if dotfilesRoot == "" {
		root, usedFallback, err := findDotfilesRoot()
		if err != nil {
			return nil, err
		}
		p.dotfilesRoot = root
		p.usedFallback = usedFallback
	} else {
		p.dotfilesRoot = ExpandHome(dotfilesRoot)
	}

	absRoot, err := filepath.Abs(p.dotfilesRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for dotfiles root")
	}
	p.dotfilesRoot = absRoot

	p.setupXDGDirs()
	return p, nil
}

func (p *paths) setupXDGDirs() {
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = ExpandHome(configDir)
	} else if env := os.Getenv("XDG_CONFIG_HOME"); env != "" {
		p.xdgConfig = filepath.Join(env, AppDirName)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.xdgState = ExpandHome(stateDir)
	} else if env := os.Getenv("XDG_STATE_HOME"); env != "" {
		p.xdgState = filepath.Join(env, AppDirName)
	} else {
		p.xdgState = filepath.Join(p.home, ".local", "state", AppDirName)
	}
}

// findDotfilesRoot determines the dotfiles root:
//  1. DOTFILES_ROOT
//  2. ~/dotfiles when it exists
//  3. the enclosing git repository
//  4. the current working directory, flagged as a fallback
func findDotfilesRoot() (string, bool, error) {
	logger := logging.GetLogger("paths")

	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return ExpandHome(root), false, nil
	}

	if def := ExpandHome(DefaultDotfilesDir); isDir(def) {
		return def, false, nil
	}

	if gitRoot, err := findGitRoot(); err == nil {
		logger.Debug().Str("root", gitRoot).Msg("Using git root as dotfiles root")
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}
	logger.Debug().Str("root", cwd).Msg("Falling back to working directory")
	return cwd, true, nil
}

func findGitRoot() (string, error) {
	output, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// UserHome returns the home directory, preferring $HOME
func UserHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to determine home directory")
	}
	return home, nil
}

// ExpandHome expands a leading ~ to the home directory.
// ~user forms are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := UserHome()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ContractHome replaces a leading home directory with ~
func ContractHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return "~/" + filepath.ToSlash(rel)
	}
	return path
}

func (p *paths) DotfilesRoot() string { return p.dotfilesRoot }

// UsedFallback returns true if the current working directory was used as fallback
func (p *paths) UsedFallback() bool { return p.usedFallback }

func (p *paths) HomeDir() string { return p.home }

func (p *paths) ConfigDir() string { return p.xdgConfig }

func (p *paths) StateDir() string { return p.xdgState }

func (p *paths) UserConfigPath() string {
	return filepath.Join(p.xdgConfig, UserConfigFile)
}

// RootConfigPath returns the first existing root config file, or "".
func (p *paths) RootConfigPath() string {
	for _, name := range RootConfigFiles {
		candidate := filepath.Join(p.dotfilesRoot, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, AppDirName+".log")
}

// Expand resolves ~ against this instance's home directory
func (p *paths) Expand(path string) string {
	if path == "~" {
		return p.home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(p.home, rest)
	}
	return path
}

func (p *paths) Contract(path string) string {
	return ContractHome(path, p.home)
}

// ResolveSource makes a mapping source absolute against the dotfiles root
func (p *paths) ResolveSource(source string) string {
	expanded := p.Expand(source)
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Join(p.dotfilesRoot, expanded)
}
