// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate up | down [steps] | version | force <version> | goto <version>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/iliyamo/poker-club/internal/config"
	"github.com/iliyamo/poker-club/internal/database"
	"github.com/iliyamo/poker-club/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	log := logging.NewJSON(logging.LevelInfo)
	defer func() { _ = log.Sync() }()

	if err := config.LoadDotEnv(".env"); err != nil {
		fatal(log, "load .env", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fatal(log, "load config", err)
	}

	db, err := database.Open(context.Background(), database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		fatal(log, "connect", err)
	}
	m, err := database.NewMigrator(db.DB, cfg.DBName)
	if err != nil {
		fatal(log, "create migrator", err)
	}
	defer closeMigrator(log, m)

	if err := runCommand(m, strings.ToLower(strings.TrimSpace(os.Args[1])), os.Args[2:], log); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
			os.Exit(2)
		}
		fatal(log, "migrate", err)
	}
}

var errUsage = errors.New("usage")

// migrator is the part of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (uint, bool, error)
}

func runCommand(m migrator, cmd string, args []string, log *logging.Logger) error {
	switch cmd {
	case "up":
		if err := ignoreNoChange(m.Up(), log); err != nil {
			return err
		}
		log.Info("migrations applied")
	case "down":
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Steps(-steps), log); err != nil {
			return err
		}
		log.Info("migrations rolled back", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			fmt.Println("dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\n", version)
		fmt.Printf("dirty: %t\n", dirty)
	case "force":
		if len(args) == 0 {
			return errors.New("force requires a version argument")
		}
		version, err := parseVersion(args[0])
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		log.Info("version forced", "version", version)
	case "goto":
		if len(args) == 0 {
			return errors.New("goto requires a target version argument")
		}
		target, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Migrate(target), log); err != nil {
			return err
		}
		log.Info("migrated", "version", target)
	default:
		return errUsage
	}
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, errors.New("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if v < -1 {
		return 0, errors.New("version must be >= -1")
	}
	return v, nil
}

func parseTarget(raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(v), nil
}

func ignoreNoChange(err error, log *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(log *logging.Logger, m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		log.Warn("close migration database", "error", dbErr)
	}
}

func fatal(log *logging.Logger, what string, err error) {
	log.Error(what, "error", err)
	_ = log.Sync()
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down [steps] | version | force <version> | goto <version>")
}
