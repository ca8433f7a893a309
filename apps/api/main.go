package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/trezcool/dizimo/apps/api/echo"
	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/pagamento"
	"github.com/trezcool/dizimo/core/user"
	emailsvc "github.com/trezcool/dizimo/services/email"
	logsvc "github.com/trezcool/dizimo/services/logger"
	"github.com/trezcool/dizimo/storage/database"
	sqlxrepos "github.com/trezcool/dizimo/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()
	if err = db.Ping(); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	igrSvc := igreja.NewService(sqlxrepos.NewIgrejaRepository(db))
	dizSvc := dizimista.NewService(sqlxrepos.NewDizimistaRepository(db))
	pagSvc := pagamento.NewService(sqlxrepos.NewPagamentoRepository(db), dizSvc, mailSvc)

	// start API server
	server := echoapi.NewServer(
		&echoapi.Options{
			Address:      core.Conf.Server.Address(),
			Logger:       logger,
			UserSvc:      usrSvc,
			IgrejaSvc:    igrSvc,
			DizimistaSvc: dizSvc,
			PagamentoSvc: pagSvc,
		},
	)
	go server.Start()
	logger.Info(fmt.Sprintf("Dizimo API listening on %s", core.Conf.Server.Address()))

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: starting shutdown...", sig))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
		}
	}
}
