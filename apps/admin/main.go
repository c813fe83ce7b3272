package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/mafunzo/core"
	"github.com/trezcool/mafunzo/core/seed"
	"github.com/trezcool/mafunzo/core/training"
	"github.com/trezcool/mafunzo/core/user"
	logsvc "github.com/trezcool/mafunzo/services/logger"
	"github.com/trezcool/mafunzo/storage/database"
	sqlxrepos "github.com/trezcool/mafunzo/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewStdoutLogger("ADMIN", conf)
	logger.Enable(!conf.Debug)
	database.SetMigrationLogger(logger)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("setting up database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	trainSvc := training.NewService(db, sqlxrepos.NewTrainingRepository(db), logger)

	// start CLI
	cmd := commandLine{
		db:       db,
		usrSvc:   usrSvc,
		trainSvc: trainSvc,
		seedSvc: seed.NewService(
			db,
			seed.DataFromConfig(conf),
			usrSvc,
			trainSvc,
			sqlxrepos.NewResetRepository(db),
			logger,
		),
		out: os.Stdout,
	}
	err = cmd.run(os.Args)
	_ = db.Close()
	if err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
