// internal/task/image.go
package task

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/eventhub"
	"github.com/xiaoliu2354/huobao-canvas/internal/models"
)

// DefaultImageEndpoint is used when the model config names no override.
const DefaultImageEndpoint = "/images/generations"

// ImageResult is one normalized generated image.
type ImageResult struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revisedPrompt"`
}

// ImageParams are the caller-facing inputs of an image generation.
type ImageParams struct {
	Model  string
	Prompt string
	Size   string // optional; falls back to the model default
	Image  string // optional reference image, passed through unchanged
}

// ImageTask builds a single image request and normalizes the heterogeneous
// provider response into a uniform result list.
type ImageTask struct {
	client   ImageClient
	registry *models.Registry
	hub      *eventhub.EventHub
	logger   *zap.Logger
	state    *State

	mu       sync.Mutex
	images   []ImageResult
	current  *ImageResult
	inFlight bool
}

// NewImageTask creates an image task. hub and logger may be nil.
func NewImageTask(client ImageClient, registry *models.Registry, hub *eventhub.EventHub, logger *zap.Logger) *ImageTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageTask{
		client:   client,
		registry: registry,
		hub:      hub,
		logger:   logger,
		state:    NewState(),
	}
}

// State returns the task lifecycle.
func (t *ImageTask) State() *State {
	return t.state
}

// Images returns the normalized results of the last completed generation.
func (t *ImageTask) Images() []ImageResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	results := make([]ImageResult, len(t.images))
	copy(results, t.images)
	return results
}

// CurrentImage returns the first result of the last generation, or nil.
func (t *ImageTask) CurrentImage() *ImageResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	result := *t.current
	return &result
}

// Generate runs one image generation. Size resolves from params, then the
// model's declared default, then the hard-coded fallback. Errors are
// recorded into the lifecycle and returned; there is no implicit retry.
func (t *ImageTask) Generate(ctx context.Context, params ImageParams) ([]ImageResult, error) {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return nil, ErrBusy
	}
	t.inFlight = true
	t.images = nil
	t.current = nil
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.inFlight = false
		t.mu.Unlock()
	}()

	t.state.SetLoading(true)

	config := t.registry.Get(params.Model)

	size := params.Size
	if size == "" && config != nil {
		size = config.DefaultSize
	}
	if size == "" {
		size = models.DefaultImageSize
	}

	endpoint := DefaultImageEndpoint
	if config != nil && config.Endpoint != "" {
		endpoint = config.Endpoint
	}

	req := ImageRequest{
		Model:  params.Model,
		Prompt: params.Prompt,
		Size:   size,
		Image:  params.Image,
	}

	response, err := t.client.GenerateImage(ctx, req, CallOptions{Endpoint: endpoint})
	if err != nil {
		t.logger.Warn("image generation failed", zap.String("model", params.Model), zap.Error(err))
		t.state.SetError(err)
		return nil, err
	}

	results := make([]ImageResult, 0, len(response.Data))
	for _, datum := range response.Data {
		results = append(results, normalizeImageDatum(datum))
	}

	t.mu.Lock()
	t.images = results
	if len(results) > 0 {
		first := results[0]
		t.current = &first
	}
	t.mu.Unlock()

	t.hub.EmitTaskStatus(eventhub.TaskStatusEvent{Task: "image", Status: string(StatusSuccess)})
	t.state.SetSuccess()
	return results, nil
}

// normalizeImageDatum maps one provider element to the uniform shape:
// url, else the base64 payload, else the element itself.
func normalizeImageDatum(datum ImageDatum) ImageResult {
	url := datum.URL
	if url == "" {
		url = datum.B64JSON
	}
	if url == "" {
		url = datum.raw
	}
	return ImageResult{URL: url, RevisedPrompt: datum.RevisedPrompt}
}
