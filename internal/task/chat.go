// internal/task/chat.go
package task

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/eventhub"
	"github.com/xiaoliu2354/huobao-canvas/internal/models"
)

// ChatOptions configures a session. Model falls back to the default chat
// model; SystemPrompt, when set, is prepended to every outgoing message list
// without being stored in history.
type ChatOptions struct {
	Model        string
	SystemPrompt string
}

// ChatSession drives a token-streamed chat conversation: it owns the ordered
// message history, the live accumulator of the in-flight response and the
// session lifecycle state.
type ChatSession struct {
	ID string

	streamer ChatStreamer
	opts     ChatOptions
	hub      *eventhub.EventHub
	logger   *zap.Logger
	state    *State

	mu       sync.Mutex
	messages []Message
	current  string
	token    *Token
	inFlight bool
}

// NewChatSession creates a session. hub may be nil; logger may be nil.
func NewChatSession(streamer ChatStreamer, opts ChatOptions, hub *eventhub.EventHub, logger *zap.Logger) *ChatSession {
	if opts.Model == "" {
		opts.Model = models.DefaultChatModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatSession{
		ID:       uuid.New().String(),
		streamer: streamer,
		opts:     opts,
		hub:      hub,
		logger:   logger,
		state:    NewState(),
	}
}

// State returns the session lifecycle.
func (s *ChatSession) State() *State {
	return s.state
}

// Messages returns a copy of the committed history.
func (s *ChatSession) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]Message, len(s.messages))
	copy(history, s.messages)
	return history
}

// CurrentResponse returns the accumulator of the in-flight (or last
// completed) assistant response. Safe to read while streaming.
func (s *ChatSession) CurrentResponse() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Send streams one exchange. The outgoing list is [system prompt?] + history
// + the new user message. On success both the user message and the full
// assistant response are committed to history as a unit. A cancelled stream
// commits nothing and leaves the lifecycle in a non-error state; any other
// stream error is recorded and returned. A second Send while one is in
// flight fails with ErrBusy.
func (s *ChatSession) Send(ctx context.Context, content string) (string, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.inFlight = true
	s.current = ""

	outgoing := make([]Message, 0, len(s.messages)+2)
	if s.opts.SystemPrompt != "" {
		outgoing = append(outgoing, Message{Role: RoleSystem, Content: s.opts.SystemPrompt})
	}
	outgoing = append(outgoing, s.messages...)
	outgoing = append(outgoing, Message{Role: RoleUser, Content: content})

	token := NewToken(ctx)
	s.token = token
	s.mu.Unlock()

	s.state.SetLoading(true)
	s.state.SetStatus(StatusStreaming)

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		if s.token == token {
			s.token = nil
		}
		s.mu.Unlock()
	}()

	chunks, errs := s.streamer.StreamChatCompletions(token.Context(), ChatRequest{
		Model:    s.opts.Model,
		Messages: outgoing,
		Stream:   true,
	})

	full := ""
	for chunk := range chunks {
		full += chunk
		s.mu.Lock()
		s.current = full
		s.mu.Unlock()
		s.hub.EmitChatChunk(s.ID, chunk)
	}

	if err := <-errs; err != nil {
		if errors.Is(err, context.Canceled) || token.Cancelled() {
			// Cancellation is not an error: nothing is committed and the
			// lifecycle returns to idle.
			s.logger.Debug("chat stream cancelled", zap.String("session_id", s.ID))
			s.state.Reset()
			return "", nil
		}
		s.logger.Warn("chat stream failed", zap.String("session_id", s.ID), zap.Error(err))
		s.state.SetError(err)
		return "", err
	}

	s.mu.Lock()
	s.messages = append(s.messages,
		Message{Role: RoleUser, Content: content},
		Message{Role: RoleAssistant, Content: full},
	)
	s.mu.Unlock()

	s.state.SetSuccess()
	return full, nil
}

// Stop revokes the active cancellation token. Calling Stop with no call in
// flight is a no-op.
func (s *ChatSession) Stop() {
	s.mu.Lock()
	token := s.token
	s.token = nil
	s.mu.Unlock()

	if token != nil {
		token.Cancel()
	}
}

// Clear discards history and the accumulator and resets the lifecycle.
func (s *ChatSession) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.current = ""
	s.mu.Unlock()
	s.state.Reset()
}

// Close stops any in-flight stream. Owners must call this on teardown so a
// dangling network operation cannot outlive its consumer.
func (s *ChatSession) Close() {
	s.Stop()
}
