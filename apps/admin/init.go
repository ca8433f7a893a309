package main

import (
	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/storage/database"
)

// initApp provisions the app database and brings the schema up to date.
// It is idempotent and safe to re-run.
func (cli *commandLine) initApp() error {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return err
	}
	if _, err := cli.connect(); err != nil {
		return err
	}
	return database.Migrate(cli.db.DB)
}
