// Command importer loads a pre-shaped dictionary bank file into the term
// index. It is intended to be run offline, not as part of the main server.
//
// Flags:
//
//	--bank             path to the dictionary bank JSON file
//	--dry-run          parse and validate without writing to DB
//	--importer-config  path to importer YAML config file
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/miyabiro/kotoba-backend/internal/adapter/postgres"
	"github.com/miyabiro/kotoba-backend/internal/adapter/postgres/term"
	"github.com/miyabiro/kotoba-backend/internal/app"
	"github.com/miyabiro/kotoba-backend/internal/app/importer"
	"github.com/miyabiro/kotoba-backend/internal/config"
)

// Compile-time interface assertion.
var _ importer.TermBulkRepo = (*term.Repo)(nil)

func main() {
	bankFlag := flag.String("bank", "", "path to the dictionary bank JSON file")
	dryRunFlag := flag.Bool("dry-run", false, "parse and validate without writing to DB")
	importerConfigFlag := flag.String("importer-config", "", "path to importer YAML config file")
	flag.Parse()

	// Load app config (for DB connection).
	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(appCfg.Log)

	// Load importer config.
	importerCfg, err := importer.LoadConfig(*importerConfigFlag)
	if err != nil {
		logger.Error("load importer config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CLI flags override config.
	if *bankFlag != "" {
		importerCfg.BankPath = *bankFlag
	}
	if *dryRunFlag {
		importerCfg.DryRun = true
	}

	// 30-minute context timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// Connect to DB.
	pool, err := postgres.NewPool(ctx, appCfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	repo := term.New(pool, txm)

	// Run pipeline.
	result, err := importer.NewPipeline(logger, repo, *importerCfg).Run(ctx)
	if err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import finished",
		slog.String("dictionary", result.Dictionary),
		slog.Int("terms", result.Terms),
		slog.Int("meta", result.Meta),
		slog.Int("tags", result.Tags),
	)
}
