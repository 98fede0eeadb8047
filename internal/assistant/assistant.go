// Package assistant runs the interactive command loop: it reads
// queries from an input source, dispatches them, and hands results to
// the front-end callbacks.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// fallbackResponse is spoken when no handler took the query.
const fallbackResponse = "I didn't understand that. Say 'help' for available commands."

// farewell is spoken when the loop ends.
const farewell = "Goodbye!"

// InputSource produces one query per call. Listen blocks until input
// is available, the context is done, or the source is exhausted, in
// which case it returns io.EOF.
type InputSource interface {
	Listen(ctx context.Context) (string, error)
}

// ListenFunc adapts a function to InputSource.
type ListenFunc func(ctx context.Context) (string, error)

// Listen implements InputSource.
func (f ListenFunc) Listen(ctx context.Context) (string, error) {
	return f(ctx)
}

// Assistant owns the interactive loop around a dispatcher.
type Assistant struct {
	dispatcher *dispatch.Dispatcher
	sess       *session.Session
	input      InputSource
	logger     *slog.Logger
	now        func() time.Time

	onResponse  func(dispatch.Result)
	onCommand   func(string)
	onListening func()
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLogger sets the assistant's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source used for greetings.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		if now != nil {
			a.now = now
		}
	}
}

// OnResponse sets the callback invoked with every result the loop
// produces, including notices, the greeting, and the farewell.
func OnResponse(fn func(dispatch.Result)) Option {
	return func(a *Assistant) {
		a.onResponse = fn
	}
}

// OnCommand sets the callback invoked with each raw query before it
// is dispatched.
func OnCommand(fn func(string)) Option {
	return func(a *Assistant) {
		a.onCommand = fn
	}
}

// OnListening sets the callback invoked each time the loop waits for
// input.
func OnListening(fn func()) Option {
	return func(a *Assistant) {
		a.onListening = fn
	}
}

// New creates an assistant around a dispatcher, session, and input
// source.
func New(d *dispatch.Dispatcher, sess *session.Session, input InputSource, opts ...Option) *Assistant {
	a := &Assistant{
		dispatcher: d,
		sess:       sess,
		input:      input,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Greet returns the time-of-day greeting for the session's user.
func (a *Assistant) Greet() string {
	var part string
	switch hour := a.now().Hour(); {
	case hour < 12:
		part = "Good morning"
	case hour < 18:
		part = "Good afternoon"
	default:
		part = "Good evening"
	}
	return fmt.Sprintf("%s, %s. How can I help?", part, a.sess.UserName())
}

// Process dispatches one query and normalizes the outcome for the
// front-end. The second return value reports whether the loop should
// continue; it is false only for an exit action.
func (a *Assistant) Process(query string) (dispatch.Result, bool) {
	if a.onCommand != nil {
		a.onCommand(query)
	}
	a.sess.SetLastCommand(query)

	result := a.dispatcher.Dispatch(query, a.sess)
	if result.IsNoMatch() {
		result = dispatch.Result{
			Status:   dispatch.StatusError,
			Err:      dispatch.ErrNoHandler,
			Response: fallbackResponse,
		}
	}

	return result, result.Action != dispatch.ActionExit
}

// Run drives the loop until the input source is exhausted, a handler
// requests exit, or the context is done. Each iteration is panic
// isolated so neither a callback nor the dispatch path can kill the
// loop.
func (a *Assistant) Run(ctx context.Context) error {
	a.respond(dispatch.Reply(a.Greet()))

	for {
		for _, notice := range a.sess.DrainNotices() {
			a.respond(dispatch.Reply(notice))
		}

		if a.onListening != nil {
			a.onListening()
		}
		a.sess.SetListening(true)
		query, err := a.input.Listen(ctx)
		a.sess.SetListening(false)

		switch {
		case errors.Is(err, io.EOF):
			a.respond(dispatch.Reply(farewell))
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			a.respond(dispatch.Reply(farewell))
			return ctx.Err()
		case err != nil:
			a.logger.Error("input source failed", "error", err)
			return err
		}

		if query == "" {
			continue
		}

		keepGoing := a.step(query)
		if !keepGoing {
			a.respond(dispatch.Reply(farewell))
			return nil
		}
	}
}

// step processes one query with panic recovery.
func (a *Assistant) step(query string) (keepGoing bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("loop iteration panicked", "query", query, "panic", r)
			keepGoing = true
		}
	}()

	result, keepGoing := a.Process(query)
	a.respond(result)
	return keepGoing
}

func (a *Assistant) respond(result dispatch.Result) {
	if result.IsError() {
		a.logger.Warn("command failed", "error", result.Err)
	}
	if a.onResponse != nil {
		a.onResponse(result)
	}
}
