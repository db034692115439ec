package main

import (
	"log"
	"os"

	"github.com/trezcool/tempo/apps/api/di"
	"github.com/trezcool/tempo/core"
	emailsvc "github.com/trezcool/tempo/services/email"
	"github.com/trezcool/tempo/storage/database"
	inmemdb "github.com/trezcool/tempo/storage/database/inmem"
	sqlxrepos "github.com/trezcool/tempo/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := di.NewLogger("ADMIN", conf)
	mailSvc := emailsvc.NewConsoleService(conf, appLogger)

	cli := commandLine{}
	if conf.Storage == core.StorageMemory {
		c := di.New(conf, appLogger, mailSvc, di.MemoryRepositories(inmemdb.NewDB()))
		cli.usrSvc = c.UserSvc
	} else {
		// set up DB
		db, err := database.Open(conf)
		errAndDie(err)
		defer db.Close()

		c := di.New(conf, appLogger, mailSvc, di.PostgresRepositories(sqlxrepos.NewDB(db)))
		cli.db = db.DB
		cli.usrSvc = c.UserSvc
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
