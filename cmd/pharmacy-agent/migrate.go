package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/store"
)

// =============================================================================
// 🗄️ migrate 命令
// =============================================================================

// runMigrate 管理药房目录的数据库 schema 和演示数据。
//
//	migrate up    应用全部待执行迁移
//	migrate seed  写入演示处方和库存
func runMigrate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pharmacy-agent migrate <up|seed> [--config <path>]")
		os.Exit(1)
	}
	sub := args[0]

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	cfg, _ := loadConfig(fs, args[1:])

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	if cfg.Store.Driver == "" || cfg.Store.Driver == "memory" {
		fmt.Fprintln(os.Stderr, "migrate requires a database store driver (postgres, mysql, or sqlite)")
		os.Exit(1)
	}

	g, err := store.NewGorm(store.GormConfig{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.Store.DSN,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
		Logger:          logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer g.Close()

	switch sub {
	case "up":
		if err := g.Migrate(cfg.Store.Driver); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migrations applied")
	case "seed":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.Seed(ctx, g); err != nil {
			fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Demo catalog seeded")
	default:
		fmt.Fprintf(os.Stderr, "Unknown migrate subcommand: %s\n", sub)
		fmt.Fprintln(os.Stderr, "Usage: pharmacy-agent migrate <up|seed> [--config <path>]")
		os.Exit(1)
	}
}
