// internal/task/token.go
package task

import "context"

// Token is a revocable cancellation signal for an in-flight streaming call.
// A fresh token is created per call; Cancel is idempotent and revokes the
// context checked at every suspension point of the streaming consumer.
type Token struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken creates a token derived from the given parent context.
func NewToken(parent context.Context) *Token {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Context returns the context to pass into the streaming call.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Cancel revokes the token. Safe to call multiple times.
func (t *Token) Cancel() {
	t.cancel()
}

// Cancelled reports whether the token has been revoked (or its parent ended).
func (t *Token) Cancelled() bool {
	return t.ctx.Err() != nil
}
