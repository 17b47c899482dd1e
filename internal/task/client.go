// internal/task/client.go
package task

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation. Order carries chronology.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CallOptions carries per-call routing resolved from the model config.
type CallOptions struct {
	Endpoint string `json:"endpoint,omitempty"`
}

// ChatRequest is the outgoing payload of a streamed chat completion.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`
}

// ChatStreamer is the transport contract for token-streamed chat. The
// fragment channel is closed on exhaustion; at most one error is delivered
// on the error channel, which is closed afterwards. Implementations must
// honor ctx cancellation at every suspension point.
type ChatStreamer interface {
	StreamChatCompletions(ctx context.Context, req ChatRequest) (<-chan string, <-chan error)
}

// ImageRequest is the outgoing payload of a single-shot image generation.
type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	Image  string `json:"image,omitempty"` // optional reference image, passed through unchanged
}

// ImageClient is the transport contract for image generation.
type ImageClient interface {
	GenerateImage(ctx context.Context, req ImageRequest, opts CallOptions) (*ImageResponse, error)
}

// ImageDatum is one element of a provider image response. Providers answer
// with objects carrying url or b64_json, or occasionally a bare string.
type ImageDatum struct {
	URL           string `json:"url"`
	B64JSON       string `json:"b64_json"`
	RevisedPrompt string `json:"revised_prompt"`

	// raw holds the element itself when it was a bare JSON string.
	raw string
}

// UnmarshalJSON accepts either an object or a bare string element.
func (d *ImageDatum) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = ImageDatum{raw: s}
		return nil
	}

	type datum ImageDatum
	var obj datum
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*d = ImageDatum(obj)
	return nil
}

// ImageResponse is a provider image response. The data field may be a single
// object or a sequence, and some providers omit the wrapper entirely.
type ImageResponse struct {
	Data []ImageDatum `json:"data"`
}

// UnmarshalJSON tolerates the three observed shapes: {"data": [...]},
// {"data": {...}}, and a bare element or array without the wrapper.
func (r *ImageResponse) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		data = envelope.Data
	}

	var list []ImageDatum
	if err := json.Unmarshal(data, &list); err == nil {
		r.Data = list
		return nil
	}

	var single ImageDatum
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	r.Data = []ImageDatum{single}
	return nil
}

// VideoRequest is the outgoing payload of a video job submission. The size
// and seconds names are fixed by the external protocol; callers express them
// as ratio and duration (see VideoParams).
type VideoRequest struct {
	Model           string `json:"model"`
	Prompt          string `json:"prompt"`
	FirstFrameImage string `json:"first_frame_image,omitempty"`
	LastFrameImage  string `json:"last_frame_image,omitempty"`
	Size            string `json:"size,omitempty"`
	Seconds         int    `json:"seconds,omitempty"`
}

// VideoClient is the transport contract for video job submission and status.
type VideoClient interface {
	CreateVideoTask(ctx context.Context, req VideoRequest, opts CallOptions) (*VideoSubmission, error)
	GetVideoTaskStatus(ctx context.Context, taskID string) (*VideoStatus, error)
}

// VideoPayload is the data field of a video response: an object with a url,
// or an array whose first element carries it.
type VideoPayload struct {
	URL   string
	Items []struct {
		URL string `json:"url"`
	}
}

// UnmarshalJSON accepts both the object and array encodings.
func (p *VideoPayload) UnmarshalJSON(data []byte) error {
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		p.URL = obj.URL
		return nil
	}
	return json.Unmarshal(data, &p.Items)
}

// FirstURL returns the payload's media url, if any.
func (p *VideoPayload) FirstURL() string {
	if p == nil {
		return ""
	}
	if p.URL != "" {
		return p.URL
	}
	if len(p.Items) > 0 {
		return p.Items[0].URL
	}
	return ""
}

// VideoSubmission is the response of a video job submission. Providers
// encode the task identifier under three different names, and some answer
// with inline media instead of an identifier.
type VideoSubmission struct {
	ID        string        `json:"id"`
	TaskID    string        `json:"task_id"`
	TaskIDAlt string        `json:"taskId"`
	URL       string        `json:"url"`
	Data      *VideoPayload `json:"data"`
}

// TaskIdentifier returns the job id, checking the alternate field names in
// priority order. Empty means the provider sent no identifier.
func (s *VideoSubmission) TaskIdentifier() string {
	switch {
	case s.ID != "":
		return s.ID
	case s.TaskID != "":
		return s.TaskID
	default:
		return s.TaskIDAlt
	}
}

// MediaURL returns the inline media url when the submission completed
// synchronously.
func (s *VideoSubmission) MediaURL() string {
	if url := s.Data.FirstURL(); url != "" {
		return url
	}
	return s.URL
}

// VideoError is the structured error of a failed video job.
type VideoError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// VideoStatus is one poll answer for an asynchronous video job.
type VideoStatus struct {
	Status   string        `json:"status"`
	Data     *VideoPayload `json:"data"`
	URL      string        `json:"url"`
	VideoURL string        `json:"video_url"`
	Error    *VideoError   `json:"error"`
	Message  string        `json:"message"`
}

// Completed reports a terminal success: an explicit status, or the mere
// presence of a data payload (provider inconsistency tolerated).
func (s *VideoStatus) Completed() bool {
	return s.Status == "completed" || s.Status == "succeeded" || s.Data != nil
}

// Failed reports a terminal failure status.
func (s *VideoStatus) Failed() bool {
	return s.Status == "failed" || s.Status == "error"
}

// ResultURL returns the finished media url, checking the alternate fields in
// priority order.
func (s *VideoStatus) ResultURL() string {
	if url := s.Data.FirstURL(); url != "" {
		return url
	}
	if s.URL != "" {
		return s.URL
	}
	return s.VideoURL
}

// FailureMessage returns the most specific failure description available.
func (s *VideoStatus) FailureMessage() string {
	if s.Error != nil && s.Error.Message != "" {
		return s.Error.Message
	}
	if s.Message != "" {
		return s.Message
	}
	return "video generation failed"
}
