package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// NewGormDB opens the record store. driver is "postgres" or "sqlite"; dsn is
// a postgres connection string or a sqlite file path.
func NewGormDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// sqlite handles a single writer; a wide pool only causes
		// SQLITE_BUSY under the serialized worker anyway.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and seeds the reserved "Unfiled" category.
// Safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Category{},
		&model.Note{},
		&model.Metadata{},
		&model.Preference{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// GORM treats id 0 as "unset" on Create, so the reserved row is seeded
	// with raw SQL.
	var count int64
	if err := db.Model(&model.Category{}).
		Where("id = ?", entity.UnfiledCategoryId).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Exec(
			"INSERT INTO categories (id, name) VALUES (?, ?)",
			entity.UnfiledCategoryId, entity.UnfiledCategoryName,
		).Error; err != nil {
			return fmt.Errorf("seed reserved category: %w", err)
		}
	}
	return nil
}
