package database

import (
	"fmt"
	"log"
	"time"

	"go-glass-dispatch/internal/config"
	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/store"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database and syncs the schema.
func Connect(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for driver %q", cfg.DBDriver)
		}
		dialector = mysql.Open(cfg.DBDSN)
	case config.DriverSQLite:
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = "glass-dispatch.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("driver %q has no database", cfg.DBDriver)
	}

	var (
		db  *gorm.DB
		err error
	)

	// 1. Connect with GORM (Wait for DB to be ready)
	for i := 0; i < cfg.DBRetries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:         logger.Default.LogMode(cfg.GormLogLevel()),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/%d)", i+1, cfg.DBRetries)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", cfg.DBRetries, err)
	}
	log.Printf("✅ Successfully connected to %s!", cfg.DBDriver)

	// 2. Pool tuning only matters for a server database
	if cfg.DBDriver == config.DriverMySQL {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	// 3. Auto-Migrate
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("✅ Database Schema Synced!")
	return db, nil
}

// Migrate creates or updates every table the stores use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.LoadingSlip{},
		&models.SlipOrderGroup{},
		&models.SlipItem{},
		&models.AuditLog{},
	)
}

// OpenStores returns the stores for the configured driver: process memory, or
// gorm over a freshly connected and migrated database.
func OpenStores(cfg config.Config) (store.Stores, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Println("⚠️ Using in-memory storage. Data is lost on restart.")
		return store.NewMemory(time.Now), nil
	}
	db, err := Connect(cfg)
	if err != nil {
		return store.Stores{}, err
	}
	return store.NewGorm(db, time.Now), nil
}
