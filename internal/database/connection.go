package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"fasplanners/internal/config"
	"fasplanners/internal/domain"
	"fasplanners/internal/metrics"
)

var (
	db *gorm.DB
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Init opens the database named by the global config, migrates it and keeps
// the handle for GetDB.
func Init() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	conn, err := Open(cfg.Database)
	if err != nil {
		return err
	}

	log.Info().Str("component", "database").Msg("Running database migrations...")
	if err := Migrate(conn); err != nil {
		return err
	}

	db = conn
	log.Info().Str("component", "database").Msg("Database connected and migrated successfully")
	return nil
}

// Open connects to PostgreSQL or SQLite depending on the URL and verifies the
// connection. It does not migrate.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	if cfg.IsPostgres() {
		log.Info().Str("component", "database").Msg("Connecting to PostgreSQL database...")
		dialector = postgres.Open(cfg.GetPostgresDSN())
	} else {
		dbPath := cfg.GetSQLitePath()
		log.Info().Str("component", "database").Str("path", dbPath).Msg("Connecting to SQLite database...")
		sqlDB, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		// A single connection serialises writers and keeps :memory: databases alive.
		sqlDB.SetMaxOpenConns(1)
		dialector = sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        dbPath,
			Conn:       sqlDB,
		}
	}

	// SQL is never logged; errors are returned to callers.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	conn, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsPostgres() {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

		log.Info().
			Str("component", "database").
			Int("max_open", maxOpenConns).
			Int("max_idle", maxIdleConns).
			Msg("Connection pool configured")
	}

	if err := ping(conn); err != nil {
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	return conn, nil
}

// Migrate creates or updates the event_requests table and its indexes
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&domain.EventRequest{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func ping(conn *gorm.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	if db == nil {
		log.Fatal().Str("component", "database").Msg("Database not initialized. Call database.Init() first.")
	}
	return db
}

// HealthCheck performs a database health check
func HealthCheck() error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return ping(db)
}

// GetStats returns database connection statistics and publishes them as gauges
func GetStats() (*sql.DBStats, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	metrics.UpdateDBConnections(stats.InUse, stats.Idle)
	return &stats, nil
}

// Close closes the underlying connection pool
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
