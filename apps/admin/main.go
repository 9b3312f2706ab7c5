package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/user"
	logsvc "github.com/kistconnect/portal/services/logger"
	"github.com/kistconnect/portal/storage/database"
	sqlxrepos "github.com/kistconnect/portal/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(logsvc.NewZap("ADMIN", conf), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db), logger, validate),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
