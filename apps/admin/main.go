package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/storage/database"
	sqlxrepos "github.com/trezcool/dizimo/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := commandLine{}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
	if cli.db != nil {
		_ = cli.db.Close()
	}
}

// connect opens the app database on first use.
func (cli *commandLine) connect() (*sqlx.DB, error) {
	if cli.db != nil {
		return cli.db, nil
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	cli.db = db
	cli.usrRepo = sqlxrepos.NewUserRepository(db)
	return db, nil
}
