// Package mcp reads, rewrites and deploys the desktop assistant's MCP
// server configuration, and inspects the logs those servers write.
package mcp

import (
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
)

// DefaultServersKey is the top-level key holding server definitions
const DefaultServersKey = "mcpServers"

// Server is one launch definition
type Server struct {
	Name    string            `json:"name" yaml:"name"`
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Document is a parsed configuration file. Content is standard JSON even
// when the file on disk had comments or trailing commas.
type Document struct {
	Path    string
	Key     string
	Content string
}

// Load reads and standardizes a configuration file
func Load(path, key string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMCPConfig, "cannot read %s", path)
	}
	return Parse(path, key, data)
}

// Parse standardizes raw configuration bytes
func Parse(path, key string, data []byte) (*Document, error) {
	if key == "" {
		key = DefaultServersKey
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMCPConfig, "invalid JSON in %s", path)
	}
	return &Document{Path: path, Key: key, Content: string(std)}, nil
}

// Servers lists server definitions sorted by name
func (d *Document) Servers() []Server {
	var servers []Server
	gjson.Get(d.Content, EscapeKey(d.Key)).ForEach(func(name, value gjson.Result) bool {
		s := Server{Name: name.String(), Command: value.Get("command").String()}
		for _, arg := range value.Get("args").Array() {
			s.Args = append(s.Args, arg.String())
		}
		value.Get("env").ForEach(func(k, v gjson.Result) bool {
			if s.Env == nil {
				s.Env = map[string]string{}
			}
			s.Env[k.String()] = v.String()
			return true
		})
		servers = append(servers, s)
		return true
	})
	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })
	return servers
}

// Problems reports structural issues: a missing servers object, or
// servers without a command.
func (d *Document) Problems() []string {
	var problems []string
	root := gjson.Get(d.Content, EscapeKey(d.Key))
	if !root.Exists() {
		return append(problems, "no \""+d.Key+"\" object")
	}
	if !root.IsObject() {
		return append(problems, "\""+d.Key+"\" is not an object")
	}
	for _, s := range d.Servers() {
		if strings.TrimSpace(s.Command) == "" && !gjson.Get(d.Content, ServerPath(d.Key, s.Name)+".url").Exists() {
			problems = append(problems, "server \""+s.Name+"\" has no command")
		}
	}
	return problems
}

// EscapeKey escapes gjson/sjson path metacharacters in a single key
func EscapeKey(key string) string {
	var b strings.Builder
	for _, c := range key {
		switch c {
		case '.', '*', '?', '#', '|', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ServerPath returns the gjson path of a server entry
func ServerPath(key, name string) string {
	return EscapeKey(key) + "." + EscapeKey(name)
}
