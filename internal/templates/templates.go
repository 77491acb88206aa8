// Package templates is the built-in catalog of starter agents offered by the
// marketplace. Each template is an embedded YAML file holding an agent
// resource in its wire shape.
package templates

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soochol/agentcanvas/internal/flow"
)

//go:embed catalog/*.yaml
var embedded embed.FS

var ErrNotFound = errors.New("template not found")

type Template struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Agent       flow.Agent `json:"agent"`
}

// TaskNames lists the task labels of the template in order, for cards.
func (t Template) TaskNames() []string {
	out := make([]string, 0, len(t.Agent.Tasks))
	for _, task := range t.Agent.Tasks {
		out = append(out, task.Type.Label())
	}
	return out
}

type file struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Agent       map[string]any `yaml:"agent"`
}

// Catalog holds parsed templates sorted by id.
type Catalog struct {
	templates []Template
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return load(embedded, "catalog")
}

func load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c := &Catalog{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, err
		}
		t, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", e.Name(), err)
		}
		if t.ID == "" {
			t.ID = strings.TrimSuffix(e.Name(), ".yaml")
		}
		c.templates = append(c.templates, t)
	}
	slices.SortFunc(c.templates, func(a, b Template) int { return strings.Compare(a.ID, b.ID) })
	return c, nil
}

// parse goes YAML -> generic map -> JSON so the agent takes the same
// tolerant decoding path as a remote response.
func parse(data []byte) (Template, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Template{}, err
	}
	t := Template{ID: f.ID, Title: f.Title, Description: f.Description}
	if f.Agent == nil {
		f.Agent = map[string]any{}
	}
	b, err := json.Marshal(f.Agent)
	if err != nil {
		return Template{}, fmt.Errorf("encode agent: %w", err)
	}
	if err := json.Unmarshal(b, &t.Agent); err != nil {
		return Template{}, fmt.Errorf("decode agent: %w", err)
	}
	return t, nil
}

func (c *Catalog) List() []Template {
	return slices.Clone(c.templates)
}

func (c *Catalog) Get(id string) (Template, error) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
