package form

import (
	"context"

	"github.com/pkg/errors"
)

// ErrValidationFailed is returned by Submit when the form does not validate.
// It is a routine outcome: the field errors are available through Errors.
var ErrValidationFailed = errors.New("Form validation failed")

type (
	// SubmitFunc receives a copy of the form values. Its result and error are
	// passed through Submit unchanged.
	SubmitFunc func(ctx context.Context, values Values) (interface{}, error)

	// Outcome is the result of Submit. Skipped is set when another submit was
	// already in flight and handler was not called.
	Outcome struct {
		Result  interface{}
		Skipped bool
	}
)

// Submit validates the form and, when valid, calls handler.
//
// Only one submit runs at a time: a call made while another is in flight
// returns Outcome{Skipped: true} and a nil error, without side effects.
// The submitting flag is released on every exit path, including a panicking
// handler. The engine never cancels handler; ctx is the caller's.
func (f *Form) Submit(ctx context.Context, handler SubmitFunc) (Outcome, error) {
	if !f.acquireSubmit() {
		return Outcome{Skipped: true}, nil
	}
	defer f.releaseSubmit()

	if !f.Validate() {
		return Outcome{}, ErrValidationFailed
	}
	if handler == nil {
		return Outcome{}, nil
	}

	result, err := handler(ctx, f.Values())
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Result: result}, nil
}

func (f *Form) acquireSubmit() bool {
	f.mu.Lock()
	if f.isSubmitting {
		f.mu.Unlock()
		return false
	}
	f.isSubmitting = true
	f.mu.Unlock()
	f.notify()
	return true
}

func (f *Form) releaseSubmit() {
	f.mu.Lock()
	f.isSubmitting = false
	f.mu.Unlock()
	f.notify()
}

// IsValidationFailed reports whether err is, or wraps, ErrValidationFailed.
func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}
