package database

import (
	"fmt"

	"github.com/sangkips/brokerbill-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&entity.Firm{},
		&entity.FiscalPeriod{},
		&entity.Party{},
		&entity.Trade{},
		&entity.PartyBill{},
		&entity.Receipt{},
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("running database migrations")

	models := Models()
	if db.Dialector.Name() == DriverMySQL {
		if err := mysqlUUIDColumns(db, models); err != nil {
			return err
		}
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// mysqlUUIDColumns rewrites the uuid column type of the cached model schemas
// to char(36); MySQL has no native uuid type.
func mysqlUUIDColumns(db *gorm.DB, models []interface{}) error {
	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("parse %T: %w", m, err)
		}
		for _, field := range stmt.Schema.Fields {
			if field.DataType == "uuid" {
				field.DataType = "char(36)"
			}
		}
	}
	return nil
}
