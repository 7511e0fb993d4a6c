// Package templates ships the markdown instruction files dotsync can drop
// into a project for an AI coding assistant.
package templates

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"gopkg.in/yaml.v3"
)

//go:embed embedded/*.md
var embedded embed.FS

// DefaultFile is written when a template does not name its own file
const DefaultFile = "CLAUDE.md"

const frontMatterDelim = "---"

// Template is one markdown document plus its front matter
type Template struct {
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	File        string `json:"file" yaml:"file"`
	Body        string `json:"-" yaml:"-"`
}

// Catalog is a set of templates keyed by name
type Catalog struct {
	templates map[string]*Template
}

// Default returns the catalog built into the binary
func Default() *Catalog {
	c, err := NewCatalog(embedded, "embedded")
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog loads every .md file under dir in fsys
func NewCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	c := &Catalog{templates: map[string]*Template{}}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read templates in %s", dir)
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read template %s", e.Name())
		}
		t, err := parse(strings.TrimSuffix(e.Name(), ".md"), string(data))
		if err != nil {
			return nil, err
		}
		c.templates[t.Name] = t
	}
	return c, nil
}

func parse(name, raw string) (*Template, error) {
	t := &Template{Name: name, Body: raw}
	if strings.HasPrefix(raw, frontMatterDelim+"\n") {
		rest := raw[len(frontMatterDelim)+1:]
		end := strings.Index(rest, "\n"+frontMatterDelim+"\n")
		if end < 0 {
			return nil, errors.Newf(errors.ErrConfigParse, "template %s: unterminated front matter", name)
		}
		if err := yaml.Unmarshal([]byte(rest[:end]), t); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "template %s: bad front matter", name)
		}
		t.Name = name
		t.Body = strings.TrimLeft(rest[end+len(frontMatterDelim)+2:], "\n")
	}
	if t.File == "" {
		t.File = DefaultFile
	}
	if t.Title == "" {
		t.Title = name
	}
	return t, nil
}

// List returns all templates sorted by name
func (c *Catalog) List() []Template {
	out := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the named template
func (c *Catalog) Get(name string) (*Template, error) {
	t, ok := c.templates[strings.TrimSuffix(name, ".md")]
	if !ok {
		return nil, errors.Newf(errors.ErrTemplateNotFound, "no template named %q", name).
			WithDetail("available", c.names())
	}
	return t, nil
}

func (c *Catalog) names() []string {
	var names []string
	for _, t := range c.List() {
		names = append(names, t.Name)
	}
	return names
}

// Render formats the named template body with renderer, plain when nil
func (c *Catalog) Render(name string, renderer Renderer) (string, error) {
	t, err := c.Get(name)
	if err != nil {
		return "", err
	}
	if renderer == nil {
		renderer = &PlainRenderer{}
	}
	return renderer.Render(t.Body), nil
}

// Install writes the template body into dir and returns the written path.
// An existing file is kept unless force is set.
func (c *Catalog) Install(name, dir string, force bool) (string, error) {
	logger := logging.GetLogger("templates")
	t, err := c.Get(name)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, t.File)
	if _, err := os.Stat(dest); err == nil && !force {
		return "", errors.Newf(errors.ErrFileWrite, "%s already exists, use --force to replace it", dest).
			WithDetail("path", dest)
	}
	if err := filesystem.WriteFileAtomic(filesystem.NewOS(), dest, []byte(t.Body), 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dest)
	}
	logger.Info().Str("template", name).Str("path", dest).Msg("Installed template")
	return dest, nil
}
