package main

import (
	"log"

	"notevault-be/internal/config"
	"notevault-be/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	if err := database.Migrate(gormDB); err != nil {
		log.Panicf("Migration failed: %v", err)
	}
	log.Println("Migration complete")
}
