package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core/form"
	"github.com/trezcool/masomo-forms/core/submission"
)

// postgres error codes
const (
	pgUniqueViolation = "23505"
	pgInvalidTextRepr = "22P02" // e.g. an id that is not a uuid
)

type (
	submissionRepository struct {
		db *sqlx.DB
	}

	submissionRow struct {
		ID        string         `db:"id"`
		Form      string         `db:"form"`
		Values    types.JSONText `db:"values"`
		CreatedAt time.Time      `db:"created_at"`
	}
)

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func toRow(sub submission.Submission) (submissionRow, error) {
	vals := sub.Values
	if vals == nil {
		vals = form.Values{}
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return submissionRow{}, errors.Wrap(err, "encoding submission values")
	}
	return submissionRow{ID: sub.ID, Form: sub.Form, Values: raw, CreatedAt: sub.CreatedAt}, nil
}

func (row submissionRow) toSubmission() (submission.Submission, error) {
	vals := make(form.Values)
	if err := row.Values.Unmarshal(&vals); err != nil {
		return submission.Submission{}, errors.Wrapf(err, "decoding values of submission %s", row.ID)
	}
	return submission.Submission{ID: row.ID, Form: row.Form, Values: vals, CreatedAt: row.CreatedAt.UTC()}, nil
}

func (repo *submissionRepository) Create(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	row, err := toRow(sub)
	if err != nil {
		return submission.Submission{}, err
	}

	const q = `INSERT INTO form_submission (id, form, values, created_at)
		VALUES (:id, :form, :values, :created_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pgUniqueViolation {
			return submission.Submission{}, errors.Errorf("creating submission: duplicate id %q", sub.ID)
		}
		return submission.Submission{}, errors.Wrap(err, "creating submission")
	}
	return row.toSubmission()
}

func (repo *submissionRepository) Get(ctx context.Context, id string) (submission.Submission, error) {
	var row submissionRow
	const q = `SELECT id, form, values, created_at FROM form_submission WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pgInvalidTextRepr {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrapf(err, "getting submission %s", id)
	}
	return row.toSubmission()
}

func (repo *submissionRepository) ListByForm(ctx context.Context, name string) ([]submission.Submission, error) {
	var rows []submissionRow
	const q = `SELECT id, form, values, created_at FROM form_submission
		WHERE form = $1 ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q, name); err != nil {
		return nil, errors.Wrapf(err, "listing submissions of %s", name)
	}

	subs := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := row.toSubmission()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
