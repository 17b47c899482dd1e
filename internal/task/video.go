// internal/task/video.go
package task

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/eventhub"
	"github.com/xiaoliu2354/huobao-canvas/internal/models"
)

// DefaultVideoEndpoint is used when the model config names no override.
const DefaultVideoEndpoint = "/videos"

// Poll loop bounds: 120 attempts at 5s is a hard cap of ~10 minutes.
const (
	DefaultPollAttempts = 120
	DefaultPollInterval = 5 * time.Second
)

// VideoParams are the caller-facing inputs of a video generation. Ratio and
// Dur translate to the protocol's size and seconds fields; only present
// optionals are forwarded.
type VideoParams struct {
	Model           string
	Prompt          string
	FirstFrameImage string
	LastFrameImage  string
	Ratio           string
	Dur             int
}

// VideoResult is the finished job: identifier, terminal status, media url
// and the raw provider payloads for passthrough fields.
type VideoResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URL    string `json:"url"`

	Submission *VideoSubmission `json:"submission,omitempty"`
	Final      *VideoStatus     `json:"final,omitempty"`
}

// Progress reports the poll loop position. Percentage is monotonically
// non-decreasing and capped at 99 until completion forces it to 100.
type Progress struct {
	Attempt     int `json:"attempt"`
	MaxAttempts int `json:"maxAttempts"`
	Percentage  int `json:"percentage"`
}

// VideoTask submits a video job and, unless the provider answers with
// inline media, drives the bounded poll loop to a terminal state.
type VideoTask struct {
	client   VideoClient
	registry *models.Registry
	hub      *eventhub.EventHub
	logger   *zap.Logger
	state    *State

	// PollAttempts and PollInterval default to the fixed protocol budget;
	// tests shrink the interval.
	PollAttempts int
	PollInterval time.Duration

	mu       sync.Mutex
	video    *VideoResult
	taskID   string
	progress Progress
	inFlight bool
}

// NewVideoTask creates a video task. hub and logger may be nil.
func NewVideoTask(client VideoClient, registry *models.Registry, hub *eventhub.EventHub, logger *zap.Logger) *VideoTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoTask{
		client:       client,
		registry:     registry,
		hub:          hub,
		logger:       logger,
		state:        NewState(),
		PollAttempts: DefaultPollAttempts,
		PollInterval: DefaultPollInterval,
	}
}

// State returns the task lifecycle.
func (t *VideoTask) State() *State {
	return t.state
}

// Video returns the finished job of the last completed generation, or nil.
func (t *VideoTask) Video() *VideoResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.video
}

// TaskID returns the provider job identifier once polling has started.
func (t *VideoTask) TaskID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.taskID
}

// Progress returns the current poll position.
func (t *VideoTask) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Generate submits the job and resolves it to a terminal state: immediately
// for synchronous models or inline-media responses, otherwise through the
// bounded poll loop. There is no mid-poll cancellation token; a cancelled
// ctx surfaces through the generic error path.
func (t *VideoTask) Generate(ctx context.Context, params VideoParams) (*VideoResult, error) {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return nil, ErrBusy
	}
	t.inFlight = true
	t.video = nil
	t.taskID = ""
	t.progress = Progress{MaxAttempts: t.PollAttempts}
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.inFlight = false
		t.mu.Unlock()
	}()

	t.state.SetLoading(true)

	config := t.registry.Get(params.Model)

	endpoint := DefaultVideoEndpoint
	if config != nil && config.Endpoint != "" {
		endpoint = config.Endpoint
	}

	req := VideoRequest{Model: params.Model, Prompt: params.Prompt}
	if params.FirstFrameImage != "" {
		req.FirstFrameImage = params.FirstFrameImage
	}
	if params.LastFrameImage != "" {
		req.LastFrameImage = params.LastFrameImage
	}
	if params.Ratio != "" {
		req.Size = params.Ratio
	}
	if params.Dur != 0 {
		req.Seconds = params.Dur
	}

	submission, err := t.client.CreateVideoTask(ctx, req, CallOptions{Endpoint: endpoint})
	if err != nil {
		t.state.SetError(err)
		return nil, err
	}

	// Unknown models are assumed asynchronous; a model must declare itself
	// synchronous to skip polling.
	isAsync := config == nil || config.Async

	if !isAsync || submission.MediaURL() != "" {
		result := &VideoResult{
			ID:         submission.TaskIdentifier(),
			Status:     "completed",
			URL:        submission.MediaURL(),
			Submission: submission,
		}
		t.finish(result)
		return result, nil
	}

	id := submission.TaskIdentifier()
	if id == "" {
		t.state.SetError(ErrNoTaskID)
		return nil, ErrNoTaskID
	}

	t.mu.Lock()
	t.taskID = id
	t.mu.Unlock()
	t.state.SetStatus(StatusPolling)

	return t.poll(ctx, id, submission)
}

// poll queries the job status up to the attempt budget, one fixed delay
// apart, until completion, failure or exhaustion.
func (t *VideoTask) poll(ctx context.Context, id string, submission *VideoSubmission) (*VideoResult, error) {
	attempts := t.PollAttempts
	interval := t.PollInterval

	for i := 0; i < attempts; i++ {
		percentage := int(math.Round(float64(i) / float64(attempts) * 100))
		if percentage > 99 {
			percentage = 99
		}
		t.setProgress(Progress{Attempt: i + 1, MaxAttempts: attempts, Percentage: percentage})

		status, err := t.client.GetVideoTaskStatus(ctx, id)
		if err != nil {
			t.state.SetError(err)
			return nil, err
		}

		if status.Completed() {
			t.setProgress(Progress{Attempt: i + 1, MaxAttempts: attempts, Percentage: 100})
			result := &VideoResult{
				ID:         id,
				Status:     "completed",
				URL:        status.ResultURL(),
				Submission: submission,
				Final:      status,
			}
			t.finish(result)
			return result, nil
		}

		if status.Failed() {
			err := fmt.Errorf("video task %s failed: %s", id, status.FailureMessage())
			t.logger.Warn("video task failed", zap.String("task_id", id), zap.String("message", status.FailureMessage()))
			t.state.SetError(err)
			return nil, err
		}

		select {
		case <-ctx.Done():
			t.state.SetError(ctx.Err())
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	t.logger.Warn("video task timed out", zap.String("task_id", id), zap.Int("attempts", attempts))
	t.state.SetError(ErrPollTimeout)
	return nil, ErrPollTimeout
}

func (t *VideoTask) setProgress(progress Progress) {
	t.mu.Lock()
	t.progress = progress
	t.mu.Unlock()
	t.hub.EmitTaskStatus(eventhub.TaskStatusEvent{
		Task:     "video",
		Status:   string(StatusPolling),
		Progress: progress.Percentage,
	})
}

func (t *VideoTask) finish(result *VideoResult) {
	t.mu.Lock()
	t.video = result
	t.mu.Unlock()
	t.hub.EmitTaskStatus(eventhub.TaskStatusEvent{Task: "video", Status: string(StatusSuccess), Progress: 100})
	t.state.SetSuccess()
}
