// Package types holds the records shared between the sync, remote,
// install and mcp packages. None of them outlive a single invocation.
package types

// Mapping ties a file in the dotfiles checkout to its place on the machine.
type Mapping struct {
	Name   string `koanf:"name" toml:"name" json:"name" yaml:"name"`
	Source string `koanf:"source" toml:"source" json:"source" yaml:"source"`
	Target string `koanf:"target" toml:"target" json:"target" yaml:"target"`
}

// DisplayName prefers the configured name and falls back to the source
func (m Mapping) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Source
}

// Host is a remote machine reachable over ssh
type Host struct {
	Name        string `koanf:"name" toml:"name" json:"name" yaml:"name"`
	Alias       string `koanf:"alias" toml:"alias" json:"alias" yaml:"alias"`
	User        string `koanf:"user" toml:"user,omitempty" json:"user,omitempty" yaml:"user,omitempty"`
	Port        int    `koanf:"port" toml:"port,omitempty" json:"port,omitempty" yaml:"port,omitempty"`
	DotfilesDir string `koanf:"dotfiles_dir" toml:"dotfiles_dir,omitempty" json:"dotfiles_dir,omitempty" yaml:"dotfiles_dir,omitempty"`
}

// Address returns the ssh destination, alias first
func (h Host) Address() string {
	if h.Alias != "" {
		return h.Alias
	}
	return h.Name
}

// Tool is a CLI program the installer makes sure is present
type Tool struct {
	Name     string            `koanf:"name" toml:"name" json:"name" yaml:"name"`
	Binaries []string          `koanf:"binaries" toml:"binaries,omitempty" json:"binaries,omitempty" yaml:"binaries,omitempty"`
	Packages map[string]string `koanf:"packages" toml:"packages,omitempty" json:"packages,omitempty" yaml:"packages,omitempty"`
}

// NoPackage marks a manager that cannot provide a tool
const NoPackage = "-"

// Candidates returns the binary names that count as the tool being present
func (t Tool) Candidates() []string {
	if len(t.Binaries) > 0 {
		return t.Binaries
	}
	return []string{t.Name}
}

// PackageFor returns the package name for a manager and whether it exists
func (t Tool) PackageFor(manager string) (string, bool) {
	pkg, ok := t.Packages[manager]
	if !ok || pkg == "" {
		return t.Name, true
	}
	if pkg == NoPackage {
		return "", false
	}
	return pkg, true
}
