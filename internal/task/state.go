// internal/task/state.go
package task

import "sync"

// Status labels where a generation task is in its execution.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusStreaming Status = "streaming"
	StatusPolling   Status = "polling"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// State is the lifecycle container shared by the chat, image and video
// tasks. Transitions are not validated; callers sequence them coherently
// (idle -> running -> streaming/polling -> success/error). Observers are
// notified after every change so a UI can re-read the fields it cares about.
type State struct {
	mu        sync.Mutex
	status    Status
	loading   bool
	err       error
	observers []func(Status)
}

// NewState creates a State in the idle status.
func NewState() *State {
	return &State{status: StatusIdle}
}

// Status returns the current status label.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Loading reports whether a call is in flight.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the recorded error, or nil.
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Subscribe registers an observer invoked after every status change.
// Observers run on the mutating goroutine and must not call back into State.
func (s *State) Subscribe(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Reset returns the state to idle and clears any error.
func (s *State) Reset() {
	s.set(func() {
		s.status = StatusIdle
		s.loading = false
		s.err = nil
	})
}

// SetLoading marks a call as in flight. Loading moves the status to running;
// unloading leaves the status untouched so a terminal label survives.
func (s *State) SetLoading(loading bool) {
	s.set(func() {
		s.loading = loading
		if loading {
			s.status = StatusRunning
		}
	})
}

// SetStatus moves to a more specific substate (streaming, polling).
func (s *State) SetStatus(status Status) {
	s.set(func() {
		s.status = status
	})
}

// SetError records err and clears loading.
func (s *State) SetError(err error) {
	s.set(func() {
		s.err = err
		s.status = StatusError
		s.loading = false
	})
}

// SetSuccess marks completion, clearing loading and any error.
func (s *State) SetSuccess() {
	s.set(func() {
		s.status = StatusSuccess
		s.loading = false
		s.err = nil
	})
}

func (s *State) set(mutate func()) {
	s.mu.Lock()
	mutate()
	status := s.status
	observers := make([]func(Status), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(status)
	}
}
