package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/database"
	sqlxrepos "github.com/trezcool/minicrm/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// set up DB
	ctx := context.Background()
	db, err := database.Open(ctx, conf.Database)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		db:     db.DB,
		engine: conf.Database.Engine,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db)),
	}
	err = cli.run(ctx, os.Args[1:])
	_ = db.Close()
	if err != nil {
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
