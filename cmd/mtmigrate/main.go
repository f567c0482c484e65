package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/miccroten/mtadmin/internal/config"
	"github.com/miccroten/mtadmin/internal/migrations"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	switch cmd {
	case "up":
		result, err := migrations.Up(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if result.Changed {
			fmt.Printf("migrated to version %d\n", result.Version)
		} else {
			fmt.Printf("already at version %d\n", result.Version)
		}
	case "down":
		m, err := migrations.New(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer m.Close()
		if err := m.Steps(-1); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("rolled back one migration")
	case "version":
		m, err := migrations.New(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer m.Close()
		version, dirty, err := m.Version()
		if err == migrate.ErrNilVersion {
			fmt.Println("no migrations applied")
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("version %d (dirty=%v)\n", version, dirty)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: mtmigrate [command]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  up        Apply all pending migrations (default)")
	fmt.Fprintln(os.Stderr, "  down      Roll back the most recent migration")
	fmt.Fprintln(os.Stderr, "  version   Show the current schema version")
}
