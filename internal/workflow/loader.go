// internal/workflow/loader.go
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xiaoliu2354/huobao-canvas/internal/canvas"
)

// templateFile is the on-disk YAML shape. It is kept separate from Template
// so the file format can use its own field names.
type templateFile struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Nodes       []templateNode `yaml:"nodes"`
	Edges       []templateEdge `yaml:"edges"`
}

type templateNode struct {
	ID       string                 `yaml:"id"`
	Type     string                 `yaml:"type"`
	Position templatePosition       `yaml:"position"`
	Data     map[string]interface{} `yaml:"data"`
}

type templatePosition struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type templateEdge struct {
	ID           string `yaml:"id"`
	Source       string `yaml:"source"`
	Target       string `yaml:"target"`
	SourceHandle string `yaml:"source_handle"`
	TargetHandle string `yaml:"target_handle"`
}

func (f *templateFile) toTemplate() (*Template, error) {
	if f.ID == "" {
		return nil, fmt.Errorf("template without id")
	}
	t := &Template{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
	}
	for _, n := range f.Nodes {
		t.Nodes = append(t.Nodes, canvas.Node{
			ID:       n.ID,
			Type:     canvas.NodeType(n.Type),
			Position: canvas.Position{X: n.Position.X, Y: n.Position.Y},
			Data:     n.Data,
		})
	}
	for _, e := range f.Edges {
		t.Edges = append(t.Edges, canvas.Edge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}
	return t, nil
}

// LoadFile parses one template YAML file.
func LoadFile(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	t, err := f.toTemplate()
	if err != nil {
		return nil, fmt.Errorf("invalid template %s: %w", path, err)
	}
	return t, nil
}

// LoadDir reads every *.yaml and *.yml file in the directory. A missing
// directory yields no templates; a malformed file fails the whole load so
// broken edits surface instead of silently vanishing.
func LoadDir(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read template dir %s: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}
