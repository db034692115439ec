package main

import (
	"errors"

	"github.com/trezcool/tempo/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errNoDatabase = errors.New("migrations need the postgres storage")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
