package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig configures the database-backed store.
type GormConfig struct {
	// Driver selects the dialect: postgres, mysql, or sqlite.
	Driver string `json:"driver" yaml:"driver"`

	// DSN is the driver-specific connection string. For sqlite it is a file
	// path or ":memory:".
	DSN string `json:"dsn" yaml:"dsn"`

	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`

	Logger *zap.Logger `json:"-" yaml:"-"`
}

// DefaultGormConfig returns settings sized for one voice worker.
func DefaultGormConfig() GormConfig {
	return GormConfig{
		Driver:          "postgres",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// Gorm is the database-backed store.
type Gorm struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGorm opens the database and applies pool settings. The schema is managed
// by Migrate (SQL migrations) or, for sqlite, by AutoMigrate.
func NewGorm(cfg GormConfig) (*Gorm, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, mysql, sqlite)", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	logger.Info("database store connected",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return &Gorm{
		db:     db,
		logger: logger.With(zap.String("component", "store")),
	}, nil
}

// NewGormFromDB wraps an existing connection. Used by tests and by callers
// that manage the pool themselves.
func NewGormFromDB(db *gorm.DB, logger *zap.Logger) *Gorm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gorm{db: db, logger: logger.With(zap.String("component", "store"))}
}

// AutoMigrate creates the schema from the model structs. For sqlite and
// development only; postgres and mysql deployments run the SQL migrations.
func (g *Gorm) AutoMigrate() error {
	return g.db.AutoMigrate(&Prescription{}, &Medicine{})
}

func (g *Gorm) PrescriptionStatus(ctx context.Context, prescriptionID string) (string, error) {
	if prescriptionID == "" {
		return "", ErrInvalidInput
	}
	var p Prescription
	err := g.db.WithContext(ctx).First(&p, "id = ?", prescriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("prescription %s: %w", prescriptionID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query prescription: %w", err)
	}
	return p.Status, nil
}

func (g *Gorm) MedicineAvailability(ctx context.Context, medicine string) (string, error) {
	if medicine == "" {
		return "", ErrInvalidInput
	}
	var m Medicine
	err := g.db.WithContext(ctx).First(&m, "name = ?", normalizeName(medicine)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("medicine %s: %w", medicine, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query medicine: %w", err)
	}
	return m.Availability, nil
}

func (g *Gorm) PutPrescription(ctx context.Context, p Prescription) error {
	if p.ID == "" || p.Status == "" {
		return ErrInvalidInput
	}
	p.UpdatedAt = time.Now()
	if err := g.db.WithContext(ctx).Save(&p).Error; err != nil {
		return fmt.Errorf("save prescription: %w", err)
	}
	return nil
}

func (g *Gorm) PutMedicine(ctx context.Context, m Medicine) error {
	if m.Name == "" || m.Availability == "" {
		return ErrInvalidInput
	}
	m.Name = normalizeName(m.Name)
	m.UpdatedAt = time.Now()
	if err := g.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("save medicine: %w", err)
	}
	return nil
}

func (g *Gorm) HealthCheck(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	g.logger.Info("closing database store")
	return sqlDB.Close()
}

// WithTransaction runs fn atomically, retrying transient failures with
// exponential backoff. Seeding and batch admin writes go through here.
func (g *Gorm) WithTransaction(ctx context.Context, maxRetries int, fn func(tx *gorm.DB) error) error {
	var lastErr error
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = g.db.WithContext(ctx).Transaction(fn)
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) || attempt == maxRetries {
			return lastErr
		}
		g.logger.Warn("transaction failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return lastErr
}

// isRetryableError reports whether the failure is transient: deadlocks,
// serialization conflicts, or dropped connections.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, token := range []string{
		"deadlock",
		"serialization failure",
		"could not serialize",
		"connection reset",
		"connection refused",
		"bad connection",
		"database is locked",
	} {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}
