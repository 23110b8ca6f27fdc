package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/config"
	"github.com/goliatone/go-tenant-auth/database"
	"github.com/goliatone/go-tenant-auth/fixtures"
	"github.com/goliatone/go-tenant-auth/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.OpenAndMigrate(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := fixtures.NewSeeder(auth.NewRepositoryManager(db)).
		WithLogger(logger).
		Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println("seed complete:", report.String())
	fmt.Println("platform admin:", fixtures.AdminEmail, "/", fixtures.AdminPassword)
	fmt.Println("approved company user:", fixtures.DemoUserEmail, "/", fixtures.DemoUserPassword)
	fmt.Println("pending company user:", fixtures.PendingUserEmail, "/", fixtures.PendingUserPassword)
	return nil
}
