package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/masomo-forms/apps/api/echo"
	"github.com/trezcool/masomo-forms/core"
	"github.com/trezcool/masomo-forms/core/catalog"
	"github.com/trezcool/masomo-forms/core/submission"
	logsvc "github.com/trezcool/masomo-forms/services/logger"
	"github.com/trezcool/masomo-forms/storage/database"
	inmemdb "github.com/trezcool/masomo-forms/storage/database/inmem"
	sqlxrepos "github.com/trezcool/masomo-forms/storage/database/sqlx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.New(conf)
	if err = run(conf, logger); err != nil {
		logger.Fatal("api stopped", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	ctx := context.Background()

	// =========================================================================
	// Set up Dependencies

	forms, err := catalog.Load(conf)
	if err != nil {
		return errors.Wrap(err, "loading forms")
	}

	var repo submission.Repository
	if conf.UsesPostgres() {
		if err = database.CreateIfNotExist(ctx, conf); err != nil {
			return errors.Wrap(err, "creating database")
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err = database.Migrate(ctx, db); err != nil {
			return err
		}
		repo = sqlxrepos.NewSubmissionRepository(db)
	} else {
		repo = inmemdb.NewSubmissionRepository(inmemdb.Open())
	}
	svc := submission.NewService(forms, repo, logger, submission.WithPageSize(conf.Forms.PageSize))

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build), map[string]interface{}{
		"forms":   forms.Names(),
		"storage": conf.Storage,
	})
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address,
		Debug:          conf.Debug,
		TestMode:       conf.TestMode,
		DisableReqLogs: conf.Server.DisableReqLogs,
		Logger:         logger,
		SubmissionSvc:  svc,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}
