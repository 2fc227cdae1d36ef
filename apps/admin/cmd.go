package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sqoolify/sqoolify/core"
	"github.com/sqoolify/sqoolify/core/importer"
	"github.com/sqoolify/sqoolify/core/school"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	db        *sql.DB
	importSvc *importer.Service
	schoolSvc *school.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS...]         - run database migrations (up, down, status, ...)")
	fmt.Println("  import -type TYPE -file FILE.csv  - validate and submit a roster import")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importType := importCmd.String("type", "", "The import type: students, teachers, guardians, classes or subjects.")
	importFile := importCmd.String("file", "", "Path to the CSV file to import.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importType == "" || *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importFile(school.ImportType(*importType), *importFile)
	default:
		cli.printUsage()
		return errHelp
	}
}

// importFile runs a local CSV through the same pipeline the console
// uses: parse, validate, preview bookkeeping, then a single submission.
func (cli *commandLine) importFile(typ school.ImportType, path string) error {
	if !typ.Valid() {
		return school.ErrUnknownImportType
	}
	acceptor, err := cli.schoolSvc.Acceptor(typ)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	session, err := cli.importSvc.Start(string(typ), "", typ.Schema(), f)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			for _, fld := range vErr.Fields {
				logger.Printf("  %s: %s", fld.Field, fld.Error)
			}
		}
		return err
	}

	logger.Printf("validated %d rows; submitting...", session.RowCount())
	outcome, err := cli.importSvc.Submit(context.Background(), session.ID, acceptor)
	if err != nil {
		return err
	}

	logger.Printf("done: %d succeeded, %d failed", outcome.SuccessCount, outcome.FailureCount)
	for _, e := range outcome.Errors {
		logger.Printf("  %s", e)
	}
	return nil
}
