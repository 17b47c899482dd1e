// internal/project/project.go
package project

import (
	"strings"
	"time"

	"github.com/xiaoliu2354/huobao-canvas/internal/canvas"
)

// Project is one saved canvas. The JSON field names are the persisted wire
// format of the project list key and must stay camelCase.
type Project struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Thumbnail  string       `json:"thumbnail,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	CanvasData canvas.Graph `json:"canvasData"`
}

// clone returns a deep copy; the graph goes through canvas.Graph.Clone so
// node and edge data maps cannot alias.
func (p *Project) clone() *Project {
	copied := *p
	copied.CanvasData = p.CanvasData.Clone()
	return &copied
}

// deriveThumbnail picks the preview image out of a graph: among image and
// video nodes carrying a url, the one edited last wins. Video nodes prefer
// their thumbnail attribute over the raw media url. Returns "" when the
// graph has no media yet.
func deriveThumbnail(g canvas.Graph) string {
	var best *canvas.Node
	var bestAt float64
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if !node.IsMedia() {
			continue
		}
		at := node.EditedAt()
		if best == nil || at > bestAt {
			best = node
			bestAt = at
		}
	}
	if best == nil {
		return ""
	}
	if best.Type == canvas.NodeVideo {
		if thumb := best.DataString(canvas.DataKeyThumbnail); thumb != "" {
			return thumb
		}
	}
	return best.MediaURL()
}

// isInline reports whether a value is an embedded data payload rather than
// a reference url.
func isInline(value string) bool {
	return strings.HasPrefix(value, "data:")
}
