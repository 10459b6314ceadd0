package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/storage/database"
)

var errNoDatabase = errors.New("migrate needs the postgres storage")

var migrateFunc = migrateDB // mockable

func migrateDB(ctx context.Context, conf *core.Config) error {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return database.Migrate(ctx, db)
}

func (cli *commandLine) migrate() error {
	if cli.conf == nil || !cli.conf.UsesPostgres() {
		return errNoDatabase
	}
	if err := migrateFunc(context.Background(), cli.conf); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "database migrated")
	return nil
}
