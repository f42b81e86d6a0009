package store

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/mysql/*.sql
var mysqlMigrations embed.FS

// Migrate applies pending schema migrations over the store's own connection.
// sqlite deployments get their schema from AutoMigrate since they are
// development-only.
func (g *Gorm) Migrate(driver string) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("access connection pool: %w", err)
	}

	var (
		dbDriver database.Driver
		src      source.Driver
		name     string
	)
	switch strings.ToLower(driver) {
	case "postgres":
		dbDriver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
		if err != nil {
			return fmt.Errorf("postgres migration driver: %w", err)
		}
		src, err = iofs.New(postgresMigrations, "migrations/postgres")
		name = "postgres"
	case "mysql":
		dbDriver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
		if err != nil {
			return fmt.Errorf("mysql migration driver: %w", err)
		}
		src, err = iofs.New(mysqlMigrations, "migrations/mysql")
		name = "mysql"
	case "sqlite":
		return g.AutoMigrate()
	default:
		return fmt.Errorf("unsupported migration driver: %s", driver)
	}
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, name, dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	g.logger.Info("schema migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
