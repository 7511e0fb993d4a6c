package installer

import (
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/runner"
)

// Brew is the only manager considered on macOS
const Brew = "brew"

var installArgs = map[string][]string{
	Brew:      {"install"},
	"apt-get": {"install", "-y"},
	"dnf":     {"install", "-y"},
	"pacman":  {"-S", "--noconfirm", "--needed"},
	"zypper":  {"install", "-y"},
	"apk":     {"add"},
}

// Manager is a detected package manager
type Manager struct {
	Name string
	Sudo bool
}

// InstallCmd returns the command installing pkg
func (m Manager) InstallCmd(pkg string) runner.Cmd {
	args := append(append([]string{}, installArgs[m.Name]...), pkg)
	if m.Sudo {
		return runner.Cmd{Name: "sudo", Args: append([]string{m.Name}, args...)}
	}
	return runner.Cmd{Name: m.Name, Args: args}
}

// Supported reports whether dotsync knows how to drive a manager
func Supported(name string) bool {
	_, ok := installArgs[name]
	return ok
}

// DetectOptions carries the environment Detect inspects
type DetectOptions struct {
	GOOS string
	// Candidates is the Linux preference order
	Candidates []string
	// UseSudo prefixes Linux installs with sudo when not root and sudo exists
	UseSudo bool
	IsRoot  bool
}

// Detect picks the package manager for this machine. It returns
// ErrNoPackageManager when nothing usable is on PATH.
func Detect(r runner.Runner, opts DetectOptions) (Manager, error) {
	switch opts.GOOS {
	case "darwin":
		if _, err := r.LookPath(Brew); err == nil {
			return Manager{Name: Brew}, nil
		}
		return Manager{}, errors.New(errors.ErrNoPackageManager, "Homebrew not found, install it from https://brew.sh")
	case "linux":
		for _, name := range opts.Candidates {
			if !Supported(name) || name == Brew {
				continue
			}
			if _, err := r.LookPath(name); err != nil {
				continue
			}
			m := Manager{Name: name}
			if opts.UseSudo && !opts.IsRoot {
				if _, err := r.LookPath("sudo"); err == nil {
					m.Sudo = true
				}
			}
			return m, nil
		}
		if _, err := r.LookPath(Brew); err == nil {
			return Manager{Name: Brew}, nil
		}
		return Manager{}, errors.New(errors.ErrNoPackageManager, "no supported package manager found").
			WithDetail("candidates", opts.Candidates)
	default:
		return Manager{}, errors.Newf(errors.ErrNoPackageManager, "unsupported operating system %s", opts.GOOS)
	}
}
