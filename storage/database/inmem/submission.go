package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core/form"
	"github.com/trezcool/masomo-forms/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db.submission}
}

// copySubmission keeps callers from mutating stored values.
func copySubmission(sub submission.Submission) submission.Submission {
	vals := make(form.Values, len(sub.Values))
	for k, v := range sub.Values {
		vals[k] = v
	}
	sub.Values = vals
	return sub
}

func (repo *submissionRepository) Create(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[sub.ID]; ok || sub.ID == "" {
		return submission.Submission{}, errors.Errorf("creating submission: invalid or duplicate id %q", sub.ID)
	}
	stored := copySubmission(sub)
	repo.db.table[sub.ID] = &stored
	repo.db.order = append(repo.db.order, sub.ID)
	return copySubmission(stored), nil
}

func (repo *submissionRepository) Get(_ context.Context, id string) (submission.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return copySubmission(*sub), nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) ListByForm(_ context.Context, name string) ([]submission.Submission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, id := range repo.db.order {
		if sub := repo.db.table[id]; sub.Form == name {
			subs = append(subs, copySubmission(*sub))
		}
	}
	return subs, nil
}
