// internal/task/errors.go
package task

import "errors"

// ErrBusy is returned when Generate/Send is called while a previous call on
// the same task instance is still in flight. Concurrent calls are rejected
// instead of interleaved.
var ErrBusy = errors.New("task: a call is already in flight")

// ErrNoTaskID is returned when an asynchronous video submission carries no
// task identifier under any of its accepted field names.
var ErrNoTaskID = errors.New("task: no task id")

// ErrPollTimeout is returned when the video poll loop exhausts its attempt
// budget without reaching a terminal state.
var ErrPollTimeout = errors.New("task: video generation timed out")
