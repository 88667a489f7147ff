// Command migrate moves quest data in and out of the record store: import
// pulls the legacy Mongo collections in, export mirrors the store to
// Postgres for analysis.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/questguild/questbot/questbot/logger"
	"github.com/questguild/questbot/questbot/migration"
	"github.com/questguild/questbot/questbot/store"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	mode := flag.String("mode", "import", "import (mongo -> store) or export (store -> postgres)")
	storePath := flag.String("store", "data", "path to the record store")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "legacy mongo connection string")
	mongoDB := flag.String("mongo-db", "questbot", "legacy mongo database name")
	pgHost := flag.String("pg-host", "localhost", "postgres host")
	pgPort := flag.Int("pg-port", 5432, "postgres port")
	pgUser := flag.String("pg-user", "postgres", "postgres user")
	pgPassword := flag.String("pg-password", "", "postgres password")
	pgDatabase := flag.String("pg-database", "questbot", "postgres database")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s, err := store.Open(*storePath)
	if err != nil {
		slog.Error("Failed to open record store", slog.Any("error", err))
		os.Exit(-1)
	}
	defer s.Close()

	switch *mode {
	case "import":
		client, db, err := migration.Connect(ctx, *mongoURI, *mongoDB)
		if err != nil {
			slog.Error("Failed to connect to mongo", slog.Any("error", err))
			os.Exit(-1)
		}
		defer client.Disconnect(ctx)

		if _, err := migration.NewImporter(s, db).ImportAll(ctx); err != nil {
			slog.Error("Import failed", slog.Any("error", err))
			os.Exit(-1)
		}

	case "export":
		db, err := migration.NewDB(ctx, migration.DBConfig{
			Host:     *pgHost,
			Port:     *pgPort,
			User:     *pgUser,
			Password: *pgPassword,
			Database: *pgDatabase,
			PoolSize: 10,
		})
		if err != nil {
			slog.Error("Failed to connect to postgres", slog.Any("error", err))
			os.Exit(-1)
		}
		defer db.Close()

		if err := migration.NewExporter(s, db.BunDB()).ExportAll(ctx); err != nil {
			slog.Error("Export failed", slog.Any("error", err))
			os.Exit(-1)
		}

	default:
		slog.Error("Unknown mode", slog.String("mode", *mode))
		os.Exit(-1)
	}
}
