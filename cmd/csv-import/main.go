package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"titlehub/database"
	"titlehub/internal/config"
	"titlehub/internal/importer"
)

func main() {
	dir := flag.String("dir", "data", "directory containing the fixture CSV files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := importer.New(db, logger).Run(*dir); err != nil {
		log.Fatalf("import failed: %v", err)
	}

	logger.Info("import complete", "dir", *dir)
}
