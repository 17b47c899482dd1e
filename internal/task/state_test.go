// internal/task/state_test.go
package task

import (
	"errors"
	"testing"
)

func TestState_InitialIdle(t *testing.T) {
	s := NewState()

	if s.Status() != StatusIdle {
		t.Errorf("Expected idle, got %s", s.Status())
	}
	if s.Loading() {
		t.Error("New state should not be loading")
	}
	if s.Err() != nil {
		t.Error("New state should carry no error")
	}
}

func TestState_LoadingMovesToRunning(t *testing.T) {
	s := NewState()

	s.SetLoading(true)
	if s.Status() != StatusRunning {
		t.Errorf("Expected running, got %s", s.Status())
	}
	if !s.Loading() {
		t.Error("Expected loading")
	}

	// Unloading keeps the current status label.
	s.SetStatus(StatusStreaming)
	s.SetLoading(false)
	if s.Status() != StatusStreaming {
		t.Errorf("Expected streaming to survive unload, got %s", s.Status())
	}
}

func TestState_ErrorAndSuccess(t *testing.T) {
	s := NewState()
	s.SetLoading(true)

	cause := errors.New("boom")
	s.SetError(cause)
	if s.Status() != StatusError {
		t.Errorf("Expected error status, got %s", s.Status())
	}
	if s.Loading() {
		t.Error("SetError must clear loading")
	}
	if !errors.Is(s.Err(), cause) {
		t.Error("Recorded error lost")
	}

	s.SetSuccess()
	if s.Status() != StatusSuccess {
		t.Errorf("Expected success, got %s", s.Status())
	}
	if s.Err() != nil {
		t.Error("SetSuccess must clear the error")
	}
}

func TestState_Reset(t *testing.T) {
	s := NewState()
	s.SetError(errors.New("boom"))

	s.Reset()
	if s.Status() != StatusIdle || s.Err() != nil || s.Loading() {
		t.Error("Reset should return to a clean idle state")
	}
}

func TestState_ObserverNotified(t *testing.T) {
	s := NewState()

	var seen []Status
	s.Subscribe(func(status Status) {
		seen = append(seen, status)
	})

	s.SetLoading(true)
	s.SetStatus(StatusPolling)
	s.SetSuccess()

	want := []Status{StatusRunning, StatusPolling, StatusSuccess}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d notifications, got %d", len(want), len(seen))
	}
	for i, status := range want {
		if seen[i] != status {
			t.Errorf("Notification %d: expected %s, got %s", i, status, seen[i])
		}
	}
}
