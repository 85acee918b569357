package config

import (
	"errors"
	"time"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func OpenPostgres(cfg *Config) (*gorm.DB, error) {
	if cfg.Postgres.URI == "" {
		return nil, errors.New("POSTGRES_URI environment variable is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.Postgres.URI), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection Pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.Postgres.AutoMigrate {
		if err := db.AutoMigrate(
			&models.Profile{},
			&models.Job{},
			&models.Application{},
			&models.Education{},
			&models.Experience{},
			&models.Skill{},
			&models.ZohoCredentials{},
		); err != nil {
			return nil, err
		}
	}
	return db, nil
}
