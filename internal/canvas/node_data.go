// internal/canvas/node_data.go
package canvas

import "encoding/json"

// Node data keys the core inspects. Everything else in Node.Data is opaque.
const (
	DataKeyURL       = "url"
	DataKeyThumbnail = "thumbnail"
	DataKeyBase64    = "base64"
	DataKeyCreatedAt = "createdAt"
	DataKeyUpdatedAt = "updatedAt"
)

// DataString returns the named data attribute as a string, or "" when absent
// or not a string.
func (n Node) DataString(key string) string {
	if n.Data == nil {
		return ""
	}
	s, _ := n.Data[key].(string)
	return s
}

// MediaURL returns the node's media url for image and video nodes.
func (n Node) MediaURL() string {
	return n.DataString(DataKeyURL)
}

// IsMedia reports whether the node is an image or video node carrying a url.
func (n Node) IsMedia() bool {
	return (n.Type == NodeImage || n.Type == NodeVideo) && n.MediaURL() != ""
}

// EditedAt returns the node's last-edit timestamp in epoch milliseconds:
// updatedAt, else createdAt, else 0. Editors write these as numbers, which
// arrive as float64 after a JSON round-trip.
func (n Node) EditedAt() float64 {
	if ts, ok := dataNumber(n.Data, DataKeyUpdatedAt); ok {
		return ts
	}
	if ts, ok := dataNumber(n.Data, DataKeyCreatedAt); ok {
		return ts
	}
	return 0
}

func dataNumber(data map[string]interface{}, key string) (float64, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
