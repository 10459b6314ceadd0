package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/catalog"
	"github.com/trezcool/masomo-forms/core/submission"
	logsvc "github.com/trezcool/masomo-forms/services/logger"
	"github.com/trezcool/masomo-forms/storage/database"
	inmemdb "github.com/trezcool/masomo-forms/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-forms/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger = logsvc.New(conf)

	forms, err := catalog.Load(conf)
	errAndDie(errors.Wrap(err, "loading forms"))

	// the migrate command creates the database, so only connect for the others
	var repo submission.Repository
	if conf.UsesPostgres() && (len(os.Args) < 2 || os.Args[1] != "migrate") {
		db, err := database.Open(context.Background(), conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()
		repo = sqlxrepos.NewSubmissionRepository(db)
	} else {
		repo = inmemdb.NewSubmissionRepository(inmemdb.Open())
	}

	// start CLI
	cli := commandLine{
		conf: conf,
		svc:  submission.NewService(forms, repo, logger, submission.WithPageSize(conf.Forms.PageSize)),
		out:  os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp && err != errInvalid {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal("admin", err)
		os.Exit(1)
	}
}
