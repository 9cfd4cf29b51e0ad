package database

import (
	"fmt"
	"time"

	"github.com/sangkips/brokerbill-api/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Open connects to the database selected by cfg.Driver
func Open(cfg *config.DatabaseConfig, debug bool, log *logrus.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return NewPostgresDB(cfg, debug, log)
	case DriverMySQL:
		return NewMySQLDB(cfg, debug, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *logrus.Logger) (*gorm.DB, error) {
	dialector := postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	})
	return open(dialector, "PostgreSQL", debug, log)
}

// NewMySQLDB creates a new MySQL database connection
func NewMySQLDB(cfg *config.DatabaseConfig, debug bool, log *logrus.Logger) (*gorm.DB, error) {
	dialector := mysql.New(mysql.Config{
		DSN:               cfg.DSN(),
		DefaultStringSize: 255,
	})
	return open(dialector, "MySQL", debug, log)
}

func open(dialector gorm.Dialector, name string, debug bool, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(debug, log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.WithField("driver", name).Info("connected to database")
	return db, nil
}

// Close releases the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(debug bool, log *logrus.Logger) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(log, logger.Config{
		Colorful:                  false,
		LogLevel:                  level,
		SlowThreshold:             time.Second,
		IgnoreRecordNotFoundError: true,
	})
}
