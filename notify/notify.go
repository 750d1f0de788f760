// ABOUTME: Error classification and user notifications at the UI boundary
// ABOUTME: Maps store and form errors to NotFound, ValidationFailed or Unknown
package notify

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"go.uber.org/zap"
)

type Kind int

const (
	Unknown Kind = iota
	NotFound
	ValidationFailed
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case ValidationFailed:
		return "validation_failed"
	default:
		return "unknown"
	}
}

// Classify sorts an error into one of the three kinds shown to users.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return Unknown
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrFieldNotFound):
		return NotFound
	case forms.IsValidationError(err), errors.Is(err, db.ErrFieldExists):
		return ValidationFailed
	default:
		return Unknown
	}
}

// Message renders err as a single line for a toast or status bar.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case NotFound:
		return "Not found: " + err.Error()
	case ValidationFailed:
		return "Please fix the form: " + strings.TrimPrefix(err.Error(), "validation failed: ")
	default:
		return "Something went wrong: " + err.Error()
	}
}

// Notifier receives transient user-facing messages.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
)

type Note struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Recorder keeps notifications in memory in the order they were sent.
type Recorder struct {
	mu    sync.Mutex
	notes []Note
}

func (r *Recorder) Success(message string) { r.add(LevelSuccess, message) }
func (r *Recorder) Failure(message string) { r.add(LevelFailure, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{Level: level, Message: message})
}

// Notes returns a copy of everything recorded so far.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Note(nil), r.notes...)
}

// Last returns the most recent note, if any.
func (r *Recorder) Last() (Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Note{}, false
	}
	return r.notes[len(r.notes)-1], true
}

// Drain returns and clears the recorded notes.
func (r *Recorder) Drain() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notes
	r.notes = nil
	return out
}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Success(message string) {
	l.Logger.Info(message, zap.String("notification", string(LevelSuccess)))
}

func (l LogNotifier) Failure(message string) {
	l.Logger.Warn(message, zap.String("notification", string(LevelFailure)))
}

// Tee fans each notification out to every notifier.
type Tee []Notifier

func (t Tee) Success(message string) {
	for _, n := range t {
		n.Success(message)
	}
}

func (t Tee) Failure(message string) {
	for _, n := range t {
		n.Failure(message)
	}
}

type contextKey struct{}

// WithNotifier attaches a notifier for one operation. Code that notifies
// through From reaches it in addition to its own notifier, so a request can
// collect only the notes it caused.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, contextKey{}, n)
}

// From returns base, teed with the notifier attached to ctx if there is one.
func From(ctx context.Context, base Notifier) Notifier {
	n, ok := ctx.Value(contextKey{}).(Notifier)
	if !ok {
		return base
	}
	if base == nil {
		return n
	}
	return Tee{base, n}
}

// Report logs err once and sends a single failure notification for it.
func Report(n Notifier, logger *zap.Logger, err error) {
	if err == nil {
		return
	}
	logger.Error("operation failed", zap.Error(err), zap.Stringer("kind", Classify(err)))
	n.Failure(Message(err))
}
