package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/gradpath/internal/cli"
	"github.com/alexanderramin/gradpath/internal/cli/formatter"
	"github.com/alexanderramin/gradpath/internal/config"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/service"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogCalls {
		level, err := cfg.SlogLevel()
		if err != nil {
			return err
		}
		observer = service.NewLogUseCaseObserverWithFormat(os.Stderr, service.LogFormat(cfg.LogFormat), level)
	}

	formatter.SetPlain(!isTerminal(os.Stdout))

	app := &cli.App{
		Catalog:       service.NewCatalogService(uow, observer),
		Plans:         service.NewPlanService(database, uow, observer),
		Items:         service.NewItemService(uow, cfg.Actor, observer),
		Audits:        service.NewAuditService(database, uow, observer),
		Readiness:     service.NewReadinessService(uow, observer),
		Certification: service.NewCertificationService(uow, cfg.Actor, observer),
	}

	return cli.NewRootCmd(app).Execute()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
