package config

import (
	"fmt"
	"os"
	"path/filepath"

	"blog-viewstats/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// SQLiteDriverName is the database/sql driver registered by modernc.org/sqlite.
const SQLiteDriverName = "sqlite"

// OpenDB opens the sqlite database used by the sqlite store backend
// and migrates the document table.
func OpenDB(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	// DriverName selects the pure-Go modernc driver registered as "sqlite";
	// sqlite.Open would pick the cgo go-sqlite3 driver.
	db, err := gorm.Open(sqlite.Dialector{DriverName: SQLiteDriverName, DSN: path}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// sqlite allows one writer; a single connection queues transactions
	// instead of failing them with SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto migrate the schema
	if err := db.AutoMigrate(&models.AggregateDocument{}); err != nil {
		return nil, err
	}

	return db, nil
}
