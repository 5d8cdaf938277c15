// Package db opens the database connection and brings the schema up to
// date.
package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atrule/invoicing/internal/logger"
	"github.com/atrule/invoicing/internal/models"
)

// Options controls how the connection is established and migrated.
type Options struct {
	DSN string

	// MigrationsDir switches schema management to versioned SQL migrations
	// when non-empty; otherwise the model set is auto-migrated.
	MigrationsDir string

	// Seed loads the currency and designation reference tables after
	// migration.
	Seed bool

	// ConnectAttempts bounds the connection retry loop.
	ConnectAttempts int
}

// Connect opens the database with retries and applies schema management per
// the options. SQLite DSNs (path or file: URI) use the sqlite driver;
// everything else is treated as postgres.
func Connect(opts Options) (*gorm.DB, error) {
	log := logger.WithComponent("db")
	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 5
	}

	dialector := openDialector(opts.DSN)
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var conn *gorm.DB
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("dsn", maskDSN(opts.DSN)).
			Msg("database connection failed, retrying")
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info().Str("dsn", maskDSN(opts.DSN)).Msg("database connected")

	if opts.MigrationsDir != "" && !isSQLite(opts.DSN) {
		if err := runMigrations(opts.MigrationsDir, opts.DSN); err != nil {
			return nil, err
		}
	} else if err := AutoMigrate(conn); err != nil {
		return nil, err
	}

	if opts.Seed {
		if err := Seed(conn); err != nil {
			return nil, err
		}
	}
	return conn, nil
}

func openDialector(dsn string) gorm.Dialector {
	if isSQLite(dsn) {
		return sqlite.Open(dsn)
	}
	return postgres.Open(dsn)
}

func isSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db") || dsn == ":memory:"
}

// AutoMigrate creates or updates tables for the full model set and the
// partial unique index guarding the single-default bank account rule.
func AutoMigrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.CountryCurrency{},
		&models.Designation{},
		&models.Employee{},
		&models.OwnerProfile{},
		&models.OwnerBankAccount{},
		&models.Client{},
		&models.ActiveClient{},
		&models.ClientEmployee{},
		&models.Resource{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Receipt{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}
	// At most one default account per (owner, currency); enforced in the
	// schema, not only in the service transaction.
	return conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bank_default
		ON owner_bank_accounts (owner_profile_id, currency_id)
		WHERE is_default`).Error
}

func runMigrations(dir, dsn string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Seed loads the reference tables. Idempotent: existing rows are left
// untouched.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.CountryCurrency{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count currencies: %w", err)
	}
	if count == 0 {
		seed := models.SeedCurrencies()
		if err := conn.Create(&seed).Error; err != nil {
			return fmt.Errorf("seed currencies: %w", err)
		}
	}

	if err := conn.Model(&models.Designation{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count designations: %w", err)
	}
	if count == 0 {
		designations := []models.Designation{
			{Name: "Software Engineer"},
			{Name: "Senior Software Engineer"},
			{Name: "Project Manager"},
			{Name: "QA Engineer"},
			{Name: "Designer"},
		}
		if err := conn.Create(&designations).Error; err != nil {
			return fmt.Errorf("seed designations: %w", err)
		}
	}
	return nil
}

// maskDSN hides credentials in logged connection strings.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
