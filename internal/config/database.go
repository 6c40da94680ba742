package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"careerpilot/backend/internal/models"
)

// InitDatabase connects to postgres and migrates the schema. It returns a nil
// handle when the memory driver is selected.
func InitDatabase(cfg *Config) (*gorm.DB, error) {
	switch cfg.Store.Driver {
	case StoreDriverMemory:
		log.Println("⚠️  STORE_DRIVER=memory, records will not survive a restart")
		return nil, nil
	case StoreDriverPostgres:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("✅ Database connected successfully")

	if err := db.AutoMigrate(
		&models.JobApplication{},
		&models.MasterResume{},
		&models.ExtractionRun{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("✅ Database migration completed")

	return db, nil
}
