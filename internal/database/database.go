package database

import (
	"embed"
	"errors"
	"fmt"
	"time"

	phxlog "birthdaybook/pkg/log"

	"github.com/golang-migrate/migrate/v4"
	postgresdriver "github.com/golang-migrate/migrate/v4/database/postgres" // Renomeado para evitar conflito com gorm/driver/postgres
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var DB *gorm.DB

// ConnectDB initializes the global database connection.
func ConnectDB(dsn string, development bool) error {
	logLevel := logger.Silent
	if development {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	phxlog.L.Info("Database connection established.")
	return nil
}

// MigrateDB applies the embedded SQL migrations with golang-migrate.
func MigrateDB() error {
	if DB == nil {
		return errors.New("database connection is not initialized. Call ConnectDB first")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := postgresdriver.WithInstance(sqlDB, &postgresdriver.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver for migrate: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}

	phxlog.L.Info("Applying database migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			phxlog.L.Info("No new database migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		phxlog.L.Warn("Could not get migration version after applying", zap.Error(err))
	} else {
		phxlog.L.Info("Database migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

// Ping checks that the database answers.
func Ping() error {
	if DB == nil {
		return errors.New("database connection is not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// GetDB returns the current database instance.
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the global instance. Tests use it to inject a mocked connection.
func SetDB(db *gorm.DB) {
	DB = db
}
