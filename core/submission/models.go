package submission

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core/form"
)

var (
	// errors
	ErrNotFound    = errors.New("submission not found")
	ErrUnknownForm = errors.New("unknown form")
)

type (
	// Submission is an accepted set of form values. Sensitive values are stored hashed.
	Submission struct {
		ID        string      `json:"id"`
		Form      string      `json:"form"`
		Values    form.Values `json:"values"`
		CreatedAt time.Time   `json:"created_at"`
	}

	Repository interface {
		Create(ctx context.Context, sub Submission) (Submission, error)
		Get(ctx context.Context, id string) (Submission, error)
		// ListByForm returns the submissions of a form, oldest first.
		ListByForm(ctx context.Context, name string) ([]Submission, error)
	}
)
