// internal/project/store.go
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/canvas"
	"github.com/xiaoliu2354/huobao-canvas/internal/eventhub"
	"github.com/xiaoliu2354/huobao-canvas/internal/storage"
)

// StorageKey holds the serialized project list.
const StorageKey = "ai-canvas-projects"

// ErrProjectNotFound is returned when an operation names an unknown project id.
var ErrProjectNotFound = errors.New("project: not found")

// Patch carries the fields an Update may change. Nil fields are left alone.
type Patch struct {
	Name       *string
	Thumbnail  *string
	CanvasData *canvas.Graph
}

// CanvasPatch is a shallow merge into the graph: each present field replaces
// the corresponding graph field wholesale.
type CanvasPatch struct {
	Nodes    *[]canvas.Node
	Edges    *[]canvas.Edge
	Viewport *canvas.Viewport
}

// SortField names the attributes the sorted view can order by.
type SortField string

const (
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Store owns the project collection and the current-project pointer. Every
// mutation persists synchronously before returning; a crash loses at most
// the mutation in flight.
type Store struct {
	mu      sync.Mutex
	backend storage.Store
	hub     *eventhub.EventHub
	logger  *zap.Logger

	projects  []*Project
	currentID string

	// overridable for deterministic tests
	now   func() time.Time
	newID func() string
}

// NewStore creates a store over the given backend. hub and logger may be nil.
func NewStore(backend storage.Store, hub *eventhub.EventHub, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:  backend,
		hub:      hub,
		logger:   logger,
		projects: []*Project{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Load reads the persisted project list. Any read or decode failure resets
// to an empty list and is swallowed; a corrupt store must not block startup.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = []*Project{}

	raw, err := s.backend.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("project list unreadable, starting empty", zap.Error(err))
		}
		return
	}

	var loaded []*Project
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.logger.Warn("project list corrupt, starting empty", zap.Error(err))
		return
	}
	s.projects = loaded
}

// Bootstrap synthesizes one example project when the list is empty, so the
// canvas is never blank on first run.
func (s *Store) Bootstrap() *Project {
	s.mu.Lock()
	if len(s.projects) > 0 {
		s.mu.Unlock()
		return nil
	}

	now := s.now()
	textID := s.newID()
	configID := s.newID()
	example := &Project{
		ID:        s.newID(),
		Name:      "Example Project",
		CreatedAt: now,
		UpdatedAt: now,
		CanvasData: canvas.Graph{
			Nodes: []canvas.Node{
				{
					ID:       textID,
					Type:     canvas.NodeText,
					Position: canvas.Position{X: 100, Y: 200},
					Data: map[string]interface{}{
						"text": "A watercolor fox in a snowy forest",
					},
				},
				{
					ID:       configID,
					Type:     canvas.NodeImageConfig,
					Position: canvas.Position{X: 500, Y: 200},
					Data:     map[string]interface{}{},
				},
			},
			Edges: []canvas.Edge{
				{
					ID:     s.newID(),
					Source: textID,
					Target: configID,
				},
			},
			Viewport: canvas.DefaultViewport(),
		},
	}
	s.projects = []*Project{example}
	s.saveLocked()
	s.mu.Unlock()

	s.emitChanged(example.ID, "create")
	return example.clone()
}

// Create adds a new empty project at the head of the list.
func (s *Store) Create(name string) *Project {
	if name == "" {
		name = "Untitled Project"
	}

	now := s.now()
	p := &Project{
		ID:         s.newID(),
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
		CanvasData: canvas.NewGraph(),
	}

	s.mu.Lock()
	s.projects = append([]*Project{p}, s.projects...)
	s.saveLocked()
	s.mu.Unlock()

	s.emitChanged(p.ID, "create")
	return p.clone()
}

// Get returns a copy of the project, or ErrProjectNotFound.
func (s *Store) Get(id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findLocked(id)
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p.clone(), nil
}

// List returns the projects in store order, most recently updated first.
func (s *Store) List() []*Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.clone()
	}
	return out
}

// Update merges the patch into the project, refreshes updatedAt, moves the
// project to the head of the list and persists.
func (s *Store) Update(id string, patch Patch) (*Project, error) {
	s.mu.Lock()
	p := s.findLocked(id)
	if p == nil {
		s.mu.Unlock()
		return nil, ErrProjectNotFound
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Thumbnail != nil {
		p.Thumbnail = *patch.Thumbnail
	}
	if patch.CanvasData != nil {
		p.CanvasData = patch.CanvasData.Clone()
	}
	p.UpdatedAt = s.now()

	s.moveToFrontLocked(id)
	s.saveLocked()
	result := p.clone()
	s.mu.Unlock()

	s.emitChanged(id, "update")
	return result, nil
}

// UpdateCanvas shallow-merges the patch into the project's graph, rederives
// the thumbnail from the latest media node, and persists.
func (s *Store) UpdateCanvas(id string, patch CanvasPatch) (*Project, error) {
	s.mu.Lock()
	p := s.findLocked(id)
	if p == nil {
		s.mu.Unlock()
		return nil, ErrProjectNotFound
	}

	if patch.Nodes != nil {
		p.CanvasData.Nodes = append([]canvas.Node{}, (*patch.Nodes)...)
	}
	if patch.Edges != nil {
		p.CanvasData.Edges = append([]canvas.Edge{}, (*patch.Edges)...)
	}
	if patch.Viewport != nil {
		p.CanvasData.Viewport = *patch.Viewport
	}
	if thumb := deriveThumbnail(p.CanvasData); thumb != "" {
		p.Thumbnail = thumb
	}
	p.UpdatedAt = s.now()

	s.moveToFrontLocked(id)
	s.saveLocked()
	result := p.clone()
	s.mu.Unlock()

	s.emitChanged(id, "update")
	return result, nil
}

// GetCanvas returns a deep copy of the project's graph.
func (s *Store) GetCanvas(id string) (canvas.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findLocked(id)
	if p == nil {
		return canvas.Graph{}, ErrProjectNotFound
	}
	return p.CanvasData.Clone(), nil
}

// Delete removes the project. Deleting the current project clears the
// current-project pointer.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	index := -1
	for i, p := range s.projects {
		if p.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return ErrProjectNotFound
	}
	s.projects = append(s.projects[:index], s.projects[index+1:]...)
	if s.currentID == id {
		s.currentID = ""
	}
	s.saveLocked()
	s.mu.Unlock()

	s.emitChanged(id, "delete")
	return nil
}

// Duplicate deep-copies the project under a fresh id with a " (Copy)" name
// suffix and fresh timestamps, inserted at the head of the list.
func (s *Store) Duplicate(id string) (*Project, error) {
	s.mu.Lock()
	source := s.findLocked(id)
	if source == nil {
		s.mu.Unlock()
		return nil, ErrProjectNotFound
	}

	now := s.now()
	copied := &Project{
		ID:         s.newID(),
		Name:       source.Name + " (Copy)",
		Thumbnail:  source.Thumbnail,
		CreatedAt:  now,
		UpdatedAt:  now,
		CanvasData: source.CanvasData.Clone(),
	}
	s.projects = append([]*Project{copied}, s.projects...)
	s.saveLocked()
	result := copied.clone()
	s.mu.Unlock()

	s.emitChanged(copied.ID, "duplicate")
	return result, nil
}

// Rename changes the project's name.
func (s *Store) Rename(id, name string) (*Project, error) {
	return s.Update(id, Patch{Name: &name})
}

// SetThumbnail overwrites the project's derived preview.
func (s *Store) SetThumbnail(id, value string) (*Project, error) {
	return s.Update(id, Patch{Thumbnail: &value})
}

// Sorted returns a recomputed view of the list ordered by the given field.
// Date fields compare numerically, the name field case-insensitively. The
// sort is not stable; equal keys keep no particular relative order.
func (s *Store) Sorted(field SortField, order SortOrder) []*Project {
	out := s.List()
	less := func(a, b *Project) bool {
		switch field {
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// SetCurrent points the store at the active project.
func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return ErrProjectNotFound
	}
	s.currentID = id
	return nil
}

// Current returns a copy of the active project, or nil when none is set.
func (s *Store) Current() *Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findLocked(s.currentID)
	if p == nil {
		return nil
	}
	return p.clone()
}

func (s *Store) findLocked(id string) *Project {
	if id == "" {
		return nil
	}
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) moveToFrontLocked(id string) {
	for i, p := range s.projects {
		if p.ID == id {
			if i > 0 {
				s.projects = append(s.projects[:i], s.projects[i+1:]...)
				s.projects = append([]*Project{p}, s.projects...)
			}
			return
		}
	}
}

// saveLocked serializes the full list. A capacity failure triggers one retry
// with a degraded payload: image nodes lose their embedded base64 payloads
// and inline thumbnails are blanked. A second failure is reported through
// the hub and otherwise swallowed; in-memory state is never rolled back.
func (s *Store) saveLocked() {
	raw, err := json.Marshal(s.projects)
	if err != nil {
		s.logger.Error("project list serialize failed", zap.Error(err))
		return
	}

	err = s.backend.Set(StorageKey, string(raw))
	if err == nil {
		return
	}
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		s.logger.Warn("project save failed", zap.Error(err))
		s.emitDegraded(eventhub.StorageDegradedEvent{Error: err.Error()})
		return
	}

	s.logger.Warn("storage capacity exhausted, retrying with degraded payload")

	degraded, err := json.Marshal(s.degradedCopyLocked())
	if err != nil {
		s.logger.Error("degraded payload serialize failed", zap.Error(err))
		return
	}
	if err := s.backend.Set(StorageKey, string(degraded)); err != nil {
		s.logger.Warn("degraded save failed", zap.Error(err))
		s.emitDegraded(eventhub.StorageDegradedEvent{
			Error: fmt.Sprintf("project save failed even after degradation: %v", err),
		})
		return
	}
	s.emitDegraded(eventhub.StorageDegradedEvent{Degraded: true})
}

// degradedCopyLocked builds the slimmed persistence payload without touching
// the in-memory projects.
func (s *Store) degradedCopyLocked() []*Project {
	out := make([]*Project, len(s.projects))
	for i, p := range s.projects {
		copied := p.clone()
		if isInline(copied.Thumbnail) {
			copied.Thumbnail = ""
		}
		for j := range copied.CanvasData.Nodes {
			node := &copied.CanvasData.Nodes[j]
			if node.Type != canvas.NodeImage || node.Data == nil {
				continue
			}
			delete(node.Data, canvas.DataKeyBase64)
		}
		out[i] = copied
	}
	return out
}

func (s *Store) emitChanged(id, op string) {
	s.hub.EmitProjectChanged(eventhub.ProjectChangedEvent{ID: id, Op: op})
}

func (s *Store) emitDegraded(event eventhub.StorageDegradedEvent) {
	s.hub.EmitStorageDegraded(event)
}
