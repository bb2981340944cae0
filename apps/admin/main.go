package main

import (
	"fmt"
	"os"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/admission"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
	"github.com/skapefps/Unimap-sub001/core/schedule"
	logsvc "github.com/skapefps/Unimap-sub001/services/logger"
	"github.com/skapefps/Unimap-sub001/storage/database"
	sqlxrepos "github.com/skapefps/Unimap-sub001/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(os.Stderr, "ADMIN", conf)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validator := core.NewValidator()
	identity.InitValidators(validator.Validate(), validator.Translator())
	schedule.InitValidators(validator.Validate(), validator.Translator())

	st := sqlxrepos.NewStore(db)
	cli := &commandLine{
		db:           db.DB,
		conf:         conf,
		rosterSvc:    rostersync.NewService(st, validator, logger),
		admissionSvc: admission.NewService(st, validator, logger),
	}

	// start CLI
	code := 0
	if err = newRootCommand(cli).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		code = 1
	}
	if err = db.Close(); err != nil {
		logger.Error("Failed to close", err)
	}
	os.Exit(code)
}
