package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/config"
	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/logger"
	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	path, err := filepath.Abs(resolveMigrationsPath(migrationsPath))
	if err != nil {
		log.Fatal("resolve migrations path", zap.Error(err))
	}

	log.Info("migration tool started",
		zap.String("command", command),
		zap.String("migrations_path", path),
	)

	// create and list work without a database
	switch command {
	case "create":
		runCreate(log, path, args[1:])
		return
	case "list":
		runList(log, path)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	m, err := migration.New(db, path, log)
	if err != nil {
		log.Fatal("create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("migrate up", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("migrate down", zap.Error(err))
		}

	case "step":
		n, err := strconv.Atoi(requireArg(log, args, "step count"))
		if err != nil {
			log.Fatal("step count must be an integer", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("migrate step", zap.Error(err))
		}

	case "goto":
		version, err := strconv.ParseUint(requireArg(log, args, "target version"), 10, 32)
		if err != nil {
			log.Fatal("version must be an unsigned integer", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("migrate goto", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("read version", zap.Error(err))
		}
		if version == 0 {
			log.Info("no migrations applied")
		} else {
			log.Info("current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}

	case "force":
		version, err := strconv.Atoi(requireArg(log, args, "version"))
		if err != nil {
			log.Fatal("version must be an integer", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("force version", zap.Error(err))
		}

	case "drop":
		if !hasConfirmFlag(args[1:]) {
			log.Fatal("drop destroys all data; rerun as 'migrate drop -confirm'")
		}
		if err := m.Drop(); err != nil {
			log.Fatal("drop", zap.Error(err))
		}

	default:
		log.Error("unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func runCreate(log *zap.Logger, path string, args []string) {
	if len(args) == 0 {
		log.Fatal("migration name required; usage: migrate create <name> [description]")
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(path, args[0], description)
	if err != nil {
		log.Fatal("create migration", zap.Error(err))
	}

	log.Info("migration pair created",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
}

func runList(log *zap.Logger, path string) {
	migrations, err := migration.ListMigrations(path)
	if err != nil {
		log.Fatal("list migrations", zap.Error(err))
	}
	if len(migrations) == 0 {
		log.Info("no migrations found")
		return
	}

	log.Info("available migrations", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		fmt.Println("  -", m)
	}
}

// resolveMigrationsPath falls back to ./migrations, then to the directory
// two levels above the binary, so the tool works both from the repo root
// and from a deployed layout
func resolveMigrationsPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return defaultMigrationsPath
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return defaultMigrationsPath
}

func requireArg(log *zap.Logger, args []string, what string) string {
	if len(args) < 2 {
		log.Fatal(what + " required")
	}
	return args[1]
}

func hasConfirmFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Println(`house-ping schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply all pending migrations
  down                  roll back all migrations
  step <n>              apply n migrations (negative rolls back)
  goto <version>        migrate to a specific version
  version               show the current schema version
  force <version>       overwrite the recorded version (dirty-state recovery)
  drop -confirm         drop all database objects
  create <name> [desc]  create an empty up/down migration pair
  list                  list migration pairs

Flags:
  -path string          migrations directory (default: ./migrations)
  -log-level string     debug, info, warn, error (default: info)

The database connection comes from config.toml or the HOUSEPING_DATABASE_*
environment variables (HOST, PORT, USER, PASSWORD, DBNAME, SSLMODE).

Examples:
  migrate up
  migrate step -1
  migrate create add_listings_table "Listings with the provider business key"`)
}
