// internal/project/store_test.go
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xiaoliu2354/huobao-canvas/internal/canvas"
	"github.com/xiaoliu2354/huobao-canvas/internal/storage"
)

// newTestStore wires a store over an in-memory backend with a deterministic
// clock and id sequence.
func newTestStore(t *testing.T, backend storage.Store) *Store {
	t.Helper()
	if backend == nil {
		backend = storage.NewMemory()
	}
	s := NewStore(backend, nil, nil)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return s
}

func TestCreate_InsertsAtHead(t *testing.T) {
	s := newTestStore(t, nil)

	first := s.Create("First")
	second := s.Create("Second")

	if first.ID == second.ID {
		t.Fatal("Project ids must be unique")
	}
	list := s.List()
	if len(list) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(list))
	}
	if list[0].ID != second.ID {
		t.Error("Newest project must be at the head of the list")
	}
	if got := first.CanvasData.Viewport; got != canvas.DefaultViewport() {
		t.Errorf("Fresh project must carry the default viewport, got %+v", got)
	}
	if !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Error("createdAt and updatedAt must match on creation")
	}
}

func TestUpdate_MovesToFront(t *testing.T) {
	s := newTestStore(t, nil)

	oldest := s.Create("Oldest")
	s.Create("Middle")
	s.Create("Newest")

	name := "Oldest Renamed"
	updated, err := s.Update(oldest.ID, Patch{Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Oldest Renamed" {
		t.Errorf("Name not merged, got %q", updated.Name)
	}
	if !updated.UpdatedAt.After(oldest.UpdatedAt) {
		t.Error("updatedAt must be refreshed")
	}
	if s.List()[0].ID != oldest.ID {
		t.Error("Updated project must move to index 0")
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	backend := storage.NewMemory()
	s := newTestStore(t, backend)
	s.Create("Existing")
	persisted, _ := backend.Get(StorageKey)

	name := "x"
	if _, err := s.Update("missing", Patch{Name: &name}); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("Expected ErrProjectNotFound, got %v", err)
	}

	list := s.List()
	if len(list) != 1 || list[0].Name != "Existing" {
		t.Error("Failed update must not alter the list")
	}
	if after, _ := backend.Get(StorageKey); after != persisted {
		t.Error("Failed update must not persist")
	}
}

func TestUpdateCanvas_MergesAndDerivesThumbnail(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.Create("Canvas")

	nodes := []canvas.Node{
		{
			ID:   "n-older",
			Type: canvas.NodeImage,
			Data: map[string]interface{}{
				"url":       "https://cdn/old.png",
				"updatedAt": float64(1000),
			},
		},
		{
			ID:   "n-newer",
			Type: canvas.NodeVideo,
			Data: map[string]interface{}{
				"url":       "https://cdn/new.mp4",
				"thumbnail": "https://cdn/new-thumb.png",
				"createdAt": float64(2000),
			},
		},
		{
			ID:   "n-text",
			Type: canvas.NodeText,
			Data: map[string]interface{}{"text": "no media"},
		},
	}

	updated, err := s.UpdateCanvas(p.ID, CanvasPatch{Nodes: &nodes})
	if err != nil {
		t.Fatalf("UpdateCanvas failed: %v", err)
	}
	if updated.Thumbnail != "https://cdn/new-thumb.png" {
		t.Errorf("Video thumbnail attribute must win, got %q", updated.Thumbnail)
	}
	if len(updated.CanvasData.Nodes) != 3 {
		t.Errorf("Nodes not merged, got %d", len(updated.CanvasData.Nodes))
	}
	if s.List()[0].ID != p.ID {
		t.Error("Canvas update must move the project to the front")
	}
}

func TestUpdateCanvas_VideoWithoutThumbnailUsesURL(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.Create("Canvas")

	nodes := []canvas.Node{
		{
			ID:   "n-video",
			Type: canvas.NodeVideo,
			Data: map[string]interface{}{"url": "https://cdn/clip.mp4", "createdAt": float64(1)},
		},
	}
	updated, err := s.UpdateCanvas(p.ID, CanvasPatch{Nodes: &nodes})
	if err != nil {
		t.Fatalf("UpdateCanvas failed: %v", err)
	}
	if updated.Thumbnail != "https://cdn/clip.mp4" {
		t.Errorf("Expected the media url, got %q", updated.Thumbnail)
	}
}

func TestUpdateCanvas_NoMediaKeepsThumbnail(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.Create("Canvas")
	s.SetThumbnail(p.ID, "https://cdn/manual.png")

	nodes := []canvas.Node{{ID: "n-text", Type: canvas.NodeText}}
	updated, err := s.UpdateCanvas(p.ID, CanvasPatch{Nodes: &nodes})
	if err != nil {
		t.Fatalf("UpdateCanvas failed: %v", err)
	}
	if updated.Thumbnail != "https://cdn/manual.png" {
		t.Errorf("Thumbnail must not be cleared without media, got %q", updated.Thumbnail)
	}
}

func TestDuplicate_DeepCopies(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.Create("Original")
	nodes := []canvas.Node{
		{ID: "n-1", Type: canvas.NodeText, Data: map[string]interface{}{"text": "hello"}},
	}
	s.UpdateCanvas(p.ID, CanvasPatch{Nodes: &nodes})

	copied, err := s.Duplicate(p.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if copied.ID == p.ID {
		t.Error("Duplicate must get a fresh id")
	}
	if copied.Name != "Original (Copy)" {
		t.Errorf("Expected suffixed name, got %q", copied.Name)
	}
	if s.List()[0].ID != copied.ID {
		t.Error("Duplicate must be inserted at the head")
	}

	// Mutating the copy's canvas must not leak into the source.
	mutated := []canvas.Node{
		{ID: "n-1", Type: canvas.NodeText, Data: map[string]interface{}{"text": "changed"}},
	}
	s.UpdateCanvas(copied.ID, CanvasPatch{Nodes: &mutated})

	sourceGraph, _ := s.GetCanvas(p.ID)
	if sourceGraph.Nodes[0].Data["text"] != "hello" {
		t.Error("Duplicate canvas must be independent of the source")
	}
}

func TestDelete_ClearsCurrentPointer(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.Create("Doomed")
	other := s.Create("Keeper")

	if err := s.SetCurrent(p.ID); err != nil {
		t.Fatalf("SetCurrent failed: %v", err)
	}
	if err := s.Delete(p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Current() != nil {
		t.Error("Deleting the current project must clear the pointer")
	}
	if _, err := s.Get(p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Error("Deleted project must be gone")
	}
	if _, err := s.Get(other.ID); err != nil {
		t.Error("Unrelated project must survive the delete")
	}
	if err := s.Delete(p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Error("Double delete must report not found")
	}
}

func TestSorted_ByNameCaseInsensitive(t *testing.T) {
	s := newTestStore(t, nil)
	s.Create("banana")
	s.Create("Apple")
	s.Create("cherry")

	sorted := s.Sorted(SortByName, Ascending)
	got := []string{sorted[0].Name, sorted[1].Name, sorted[2].Name}
	want := []string{"Apple", "banana", "cherry"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestSorted_ByDateDescending(t *testing.T) {
	s := newTestStore(t, nil)
	first := s.Create("first")
	second := s.Create("second")

	sorted := s.Sorted(SortByCreatedAt, Descending)
	if sorted[0].ID != second.ID || sorted[1].ID != first.ID {
		t.Error("Descending date sort must put the newest first")
	}
}

func TestSorted_DoesNotReorderStore(t *testing.T) {
	s := newTestStore(t, nil)
	s.Create("b")
	s.Create("a")

	s.Sorted(SortByName, Ascending)
	if s.List()[0].Name != "a" {
		t.Error("Sorted is a derived view and must not mutate store order")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	backend := storage.NewMemory()
	s := newTestStore(t, backend)
	p := s.Create("Persisted")

	reloaded := newTestStore(t, backend)
	reloaded.Load()

	list := reloaded.List()
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("Expected the persisted project back, got %d entries", len(list))
	}
	if !list[0].CreatedAt.Equal(p.CreatedAt) {
		t.Error("Dates must survive the round trip")
	}
}

func TestLoad_CorruptPayloadResetsEmpty(t *testing.T) {
	backend := storage.NewMemory()
	backend.Set(StorageKey, "{definitely not json")

	s := newTestStore(t, backend)
	s.Load()
	if len(s.List()) != 0 {
		t.Error("Corrupt payload must reset to an empty list")
	}
}

func TestBootstrap_CreatesExampleProject(t *testing.T) {
	s := newTestStore(t, nil)
	s.Load()

	example := s.Bootstrap()
	if example == nil {
		t.Fatal("Bootstrap on an empty list must create the example project")
	}
	graph := example.CanvasData
	if len(graph.Nodes) != 2 || len(graph.Edges) != 1 {
		t.Fatalf("Expected a two-node one-edge graph, got %d/%d", len(graph.Nodes), len(graph.Edges))
	}
	if graph.Nodes[0].Type != canvas.NodeText || graph.Nodes[1].Type != canvas.NodeImageConfig {
		t.Error("Example graph must wire a text node to an image-config node")
	}
	if graph.Edges[0].Source != graph.Nodes[0].ID || graph.Edges[0].Target != graph.Nodes[1].ID {
		t.Error("Edge must connect the text node to the config node")
	}
	if graph.Viewport != canvas.DefaultViewport() {
		t.Errorf("Example viewport must be the default, got %+v", graph.Viewport)
	}

	if s.Bootstrap() != nil {
		t.Error("Bootstrap on a non-empty list must be a no-op")
	}
}

func TestSave_QuotaDegradation(t *testing.T) {
	// Budget chosen so the full payload with the embedded base64 blob is
	// rejected but the stripped payload fits.
	backend := storage.NewQuota(storage.NewMemory(), 4096)
	s := newTestStore(t, backend)

	p := s.Create("Heavy")
	blob := strings.Repeat("A", 8192)
	nodes := []canvas.Node{
		{
			ID:   "n-img",
			Type: canvas.NodeImage,
			Data: map[string]interface{}{
				"url":       "https://cdn/heavy.png",
				"base64":    blob,
				"updatedAt": float64(1),
			},
		},
	}
	s.UpdateCanvas(p.ID, CanvasPatch{Nodes: &nodes})
	s.SetThumbnail(p.ID, "data:image/png;base64,"+blob[:64])

	// In-memory state keeps the full payload.
	graph, _ := s.GetCanvas(p.ID)
	if graph.Nodes[0].Data["base64"] != blob {
		t.Error("Degradation must not touch in-memory state")
	}

	raw, err := backend.Get(StorageKey)
	if err != nil {
		t.Fatalf("Degraded save did not land: %v", err)
	}
	var persisted []*Project
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("Persisted payload unreadable: %v", err)
	}
	node := persisted[0].CanvasData.Nodes[0]
	if _, ok := node.Data["base64"]; ok {
		t.Error("Persisted image node must lose its embedded payload")
	}
	if node.Data["url"] != "https://cdn/heavy.png" {
		t.Error("Persisted image node must keep its reference url")
	}
	if persisted[0].Thumbnail != "" {
		t.Errorf("Inline thumbnail must be blanked, got %q", persisted[0].Thumbnail)
	}
}

func TestSave_DegradedFailureIsNonFatal(t *testing.T) {
	// Budget too small even for the stripped payload; mutations must still
	// succeed against in-memory state.
	backend := storage.NewQuota(storage.NewMemory(), 16)
	s := newTestStore(t, backend)

	p := s.Create("Unsaveable")
	if p == nil {
		t.Fatal("Create must succeed despite persistence failure")
	}
	if _, err := s.Get(p.ID); err != nil {
		t.Error("In-memory state must survive a failed save")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, nil)
	p := s.Create("Guarded")
	nodes := []canvas.Node{
		{ID: "n-1", Type: canvas.NodeText, Data: map[string]interface{}{"text": "original"}},
	}
	s.UpdateCanvas(p.ID, CanvasPatch{Nodes: &nodes})

	got, _ := s.Get(p.ID)
	got.CanvasData.Nodes[0].Data["text"] = "tampered"

	again, _ := s.Get(p.ID)
	if again.CanvasData.Nodes[0].Data["text"] != "original" {
		t.Error("Get must return a copy the caller cannot mutate through")
	}
}
