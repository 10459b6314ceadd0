package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-forms/core/submission"
)

type (
	DB struct {
		submission *submissionTable
	}

	submissionTable struct {
		mutex sync.RWMutex
		table map[string]*submission.Submission
		order []string // ids, by insertion
	}
)

func Open() *DB {
	return &DB{
		submission: &submissionTable{table: make(map[string]*submission.Submission)},
	}
}
