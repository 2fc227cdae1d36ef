package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/sqoolify/sqoolify/core"
	"github.com/sqoolify/sqoolify/core/importer"
	"github.com/sqoolify/sqoolify/core/school"
	"github.com/sqoolify/sqoolify/storage/database"
	sqlxrepos "github.com/sqoolify/sqoolify/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	dbx := sqlx.NewDb(db, conf.Database.Engine)

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		importSvc: importer.NewService(conf),
		schoolSvc: school.NewService(sqlxrepos.NewSchoolRepository(dbx)),
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
