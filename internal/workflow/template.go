// internal/workflow/template.go
package workflow

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/xiaoliu2354/huobao-canvas/internal/canvas"
)

// Template is a reusable canvas layout: a named set of nodes and edges a
// user can stamp onto a project. The graph data is opaque to this package.
type Template struct {
	ID          string
	Name        string
	Description string
	Category    string
	Nodes       []canvas.Node
	Edges       []canvas.Edge
}

// Instantiate returns the template's graph fragment with fresh node and
// edge ids, positions shifted by the offset. Edge endpoints are remapped to
// the new node ids; edges referencing nodes outside the template are
// dropped.
func (t *Template) Instantiate(offset canvas.Position) ([]canvas.Node, []canvas.Edge) {
	idMap := make(map[string]string, len(t.Nodes))

	nodes := make([]canvas.Node, 0, len(t.Nodes))
	for _, node := range t.Nodes {
		fresh := node
		fresh.ID = uuid.NewString()
		idMap[node.ID] = fresh.ID
		fresh.Position.X += offset.X
		fresh.Position.Y += offset.Y
		if node.Data != nil {
			data := make(map[string]interface{}, len(node.Data))
			for k, v := range node.Data {
				data[k] = v
			}
			fresh.Data = data
		}
		nodes = append(nodes, fresh)
	}

	edges := make([]canvas.Edge, 0, len(t.Edges))
	for _, edge := range t.Edges {
		source, okS := idMap[edge.Source]
		target, okT := idMap[edge.Target]
		if !okS || !okT {
			continue
		}
		fresh := edge
		fresh.ID = uuid.NewString()
		fresh.Source = source
		fresh.Target = target
		edges = append(edges, fresh)
	}

	return nodes, edges
}

// Registry holds the known templates, builtin first.
type Registry struct {
	mu      sync.Mutex
	byID    map[string]*Template
	ordered []*Template
}

// NewRegistry creates a registry seeded with the builtin templates.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]*Template)}
	for _, t := range builtinTemplates() {
		r.register(t)
	}
	return r
}

// Register adds a template. Registering an existing id replaces it: files
// on disk may evolve between reloads.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("workflow: template without id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(t)
	return nil
}

func (r *Registry) register(t *Template) {
	if existing, ok := r.byID[t.ID]; ok {
		for i, candidate := range r.ordered {
			if candidate == existing {
				r.ordered[i] = t
				break
			}
		}
	} else {
		r.ordered = append(r.ordered, t)
	}
	r.byID[t.ID] = t
}

// Get returns the template with the given id, or nil.
func (r *Registry) Get(id string) *Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

// All returns the templates in registration order.
func (r *Registry) All() []*Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Template, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByCategory returns the templates in the given category.
func (r *Registry) ByCategory(category string) []*Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Template
	for _, t := range r.ordered {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// builtinTemplates is the baked-in catalogue: a starter chain covering the
// common text-to-image flow.
func builtinTemplates() []*Template {
	return []*Template{
		{
			ID:          "starter-text-to-image",
			Name:        "Text to Image",
			Description: "Prompt text wired through an image generation step",
			Category:    "starter",
			Nodes: []canvas.Node{
				{
					ID:       "prompt",
					Type:     canvas.NodeText,
					Position: canvas.Position{X: 0, Y: 0},
					Data: map[string]interface{}{
						"text": "Describe the image you want",
					},
				},
				{
					ID:       "image-config",
					Type:     canvas.NodeImageConfig,
					Position: canvas.Position{X: 400, Y: 0},
					Data:     map[string]interface{}{},
				},
				{
					ID:       "image",
					Type:     canvas.NodeImage,
					Position: canvas.Position{X: 800, Y: 0},
					Data:     map[string]interface{}{},
				},
			},
			Edges: []canvas.Edge{
				{ID: "prompt-config", Source: "prompt", Target: "image-config"},
				{ID: "config-image", Source: "image-config", Target: "image"},
			},
		},
	}
}
