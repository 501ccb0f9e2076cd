package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
	"github.com/bdzone/staffboard/core/ledger"
	"github.com/bdzone/staffboard/core/staff"
	logsvc "github.com/bdzone/staffboard/services/logger"
	"github.com/bdzone/staffboard/storage/database"
	sqlxrepos "github.com/bdzone/staffboard/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	svcLogger := logsvc.NewConsoleLogger(logger)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)

	tokenSvc := apitoken.NewService(sqlxrepos.NewTokenRepository(db), svcLogger)

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		validate:  validate,
		staffSvc:  staff.NewService(sqlxrepos.NewStaffRepository(db), svcLogger, nil),
		tokenSvc:  tokenSvc,
		ledgerSvc: ledger.NewService(sqlxrepos.NewLedgerRepository(db), tokenSvc, svcLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
