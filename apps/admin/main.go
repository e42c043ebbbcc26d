package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/simulado/core"
	"github.com/trezcool/simulado/core/question"
	"github.com/trezcool/simulado/core/subject"
	emailsvc "github.com/trezcool/simulado/services/email"
	logsvc "github.com/trezcool/simulado/services/logger"
	"github.com/trezcool/simulado/storage/database"
	sqlxrepos "github.com/trezcool/simulado/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger("ADMIN", conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	subjSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db))

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	question.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		conf:     conf,
		qSvc:     question.NewSyncService(db, sqlxrepos.NewQuestionRepository(db), subjSvc, mailSvc, logger, conf),
		validate: validate,
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin %v", err), err)
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
