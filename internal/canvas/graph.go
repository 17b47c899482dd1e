// internal/canvas/graph.go
package canvas

import (
	"encoding/json"
	"fmt"
)

// NodeType identifies what a canvas node represents.
type NodeType string

const (
	NodeText        NodeType = "text"
	NodeImage       NodeType = "image"
	NodeVideo       NodeType = "video"
	NodeImageConfig NodeType = "imageConfig"
	NodeVideoConfig NodeType = "videoConfig"
)

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one typed unit of the visual program. Data holds arbitrary keyed
// attributes (prompt text, media urls, model settings) owned by the node's
// editor; the core only inspects the handful of keys it derives metadata from.
type Node struct {
	ID       string                 `json:"id"`
	Type     NodeType               `json:"type"`
	Position Position               `json:"position"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Edge is a directed connection between two nodes' named handles.
type Edge struct {
	ID           string                 `json:"id"`
	Source       string                 `json:"source"`
	Target       string                 `json:"target"`
	SourceHandle string                 `json:"sourceHandle,omitempty"`
	TargetHandle string                 `json:"targetHandle,omitempty"`
	Type         string                 `json:"type,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

// Viewport is the visible window onto the canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the initial window for a fresh project.
func DefaultViewport() Viewport {
	return Viewport{X: 100, Y: 50, Zoom: 0.8}
}

// Graph is the node/edge/viewport state of one project's canvas.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// NewGraph returns an empty graph with the default viewport.
func NewGraph() Graph {
	return Graph{
		Nodes:    []Node{},
		Edges:    []Edge{},
		Viewport: DefaultViewport(),
	}
}

// Clone returns a deep copy of the graph. Node and edge data maps are copied
// through a JSON round-trip so later mutation of either side cannot leak
// across.
func (g Graph) Clone() Graph {
	raw, err := json.Marshal(g)
	if err != nil {
		// The graph only holds JSON-encodable state; a marshal failure would
		// mean corrupted node data, so fall back to an empty canvas.
		return NewGraph()
	}
	var clone Graph
	if err := json.Unmarshal(raw, &clone); err != nil {
		return NewGraph()
	}
	if clone.Nodes == nil {
		clone.Nodes = []Node{}
	}
	if clone.Edges == nil {
		clone.Edges = []Edge{}
	}
	return clone
}

// Validate reports duplicate node ids and edges referencing missing nodes.
// The project store does not call this on write; it exists for callers that
// want to check imported or externally produced graphs.
func (g Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		if seen[node.ID] {
			return fmt.Errorf("duplicate node id %q", node.ID)
		}
		seen[node.ID] = true
	}

	for _, edge := range g.Edges {
		if !seen[edge.Source] {
			return fmt.Errorf("edge %q references missing source node %q", edge.ID, edge.Source)
		}
		if !seen[edge.Target] {
			return fmt.Errorf("edge %q references missing target node %q", edge.ID, edge.Target)
		}
	}
	return nil
}
