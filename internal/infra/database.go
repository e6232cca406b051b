package infra

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Gotsutoki/car-management-website/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// lockTimeout bounds FOR UPDATE waits: a row lock that cannot be acquired
// within this window raises 55P03 rather than queueing indefinitely behind a
// slow writer. The sale engine maps that SQLSTATE to a retryable Busy failure.
const lockTimeout = "3s"

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// for all models. lock_timeout rides on the DSN so it applies to every session
// the pool opens, not just whichever connection happens to run a startup SET.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(withLockTimeout(dsn)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Car{},
		&model.Customer{},
		&model.Sale{},
		&model.User{},
		&model.StockMovement{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}

// withLockTimeout injects lock_timeout into the DSN unless one is already
// set. pgx forwards unrecognized parameters as session runtime settings, so
// the value reaches every connection at startup. Both the postgres:// URL
// form and the space-separated keyword form are handled.
func withLockTimeout(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		q := u.Query()
		if q.Get("lock_timeout") == "" {
			q.Set("lock_timeout", lockTimeout)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if strings.Contains(dsn, "lock_timeout") {
		return dsn
	}
	return dsn + " lock_timeout=" + lockTimeout
}
