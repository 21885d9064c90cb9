// Package captcha carries the expected answer of the last challenge issued to
// a client through the handling of one request.
//
// The answer lives in the client's session. [Store.Middleware] copies it into
// the request's context before any handler runs, and form handlers check a
// submission against it with [Validate]. Nothing is kept outside the request
// context, so concurrently handled requests cannot observe each other.
package captcha

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
)

// AnswerSource reads the pending answer out of the session attached to a request.
type AnswerSource interface {
	CaptchaAnswer(r *http.Request) (string, bool)
}

// AnswerSourceFunc adapts a plain function to an [AnswerSource].
type AnswerSourceFunc func(r *http.Request) (string, bool)

func (f AnswerSourceFunc) CaptchaAnswer(r *http.Request) (string, bool) {
	return f(r)
}

// Store populates the per-request captcha state.
type Store struct {
	sessions AnswerSource
}

func NewStore(sessions AnswerSource) Store {
	return Store{sessions: sessions}
}

type ctxKey struct{}

// pending is the per-request state. It is only ever reachable through the
// context of the request that created it.
type pending struct {
	mu       sync.Mutex
	answer   string
	present  bool
	consumed bool
}

// OnRequestStart returns r with its captcha state populated from the session.
// It must run before anything validates a submission for the request.
func (s Store) OnRequestStart(r *http.Request) *http.Request {
	answer, ok := s.sessions.CaptchaAnswer(r)
	if answer == "" {
		ok = false
	}

	return r.WithContext(WithAnswer(r.Context(), answer, ok))
}

// Middleware runs [Store.OnRequestStart] ahead of next.
func (s Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, s.OnRequestStart(r))
	})
}

// WithAnswer attaches captcha state to ctx directly. Useful outside of HTTP
// handling and in tests.
func WithAnswer(ctx context.Context, answer string, ok bool) context.Context {
	return context.WithValue(ctx, ctxKey{}, &pending{answer: answer, present: ok})
}

// Current returns the answer expected for the request that owns ctx.
//
// It reports false when the state was never populated or the session held no
// challenge.
func Current(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(ctxKey{}).(*pending)
	if !ok {
		return "", false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.answer, p.present
}

// Validate checks a submission against the answer for the request that owns ctx.
// A request's answer can be checked once; later calls fail with [Mismatch].
func Validate(ctx context.Context, submitted string) error {
	p, ok := ctx.Value(ctxKey{}).(*pending)
	if !ok {
		return &InvalidError{Kind: MissingCookies}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.present {
		return &InvalidError{Kind: MissingCookies}
	}
	if p.consumed {
		slog.DebugContext(ctx, "captcha already checked")
		return &InvalidError{Kind: Mismatch}
	}
	p.consumed = true

	if submitted != p.answer {
		slog.DebugContext(ctx, "captcha mismatch")
		return &InvalidError{Kind: Mismatch}
	}

	return nil
}
