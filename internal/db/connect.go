// Package db opens the persistence backend and manages its schema.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/qadesk/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoBackend is returned by Connect when the driver is "none".
var ErrNoBackend = errors.New("db: no backend configured")

// PostgresDSN builds a libpq keyword/value DSN.
func PostgresDSN(b config.BackendConfig, password string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		b.Host, b.Port, b.User, password, b.Database, b.SSLMode)
}

// MySQLDSN builds a go-sql-driver/mysql DSN.
func MySQLDSN(b config.BackendConfig, password string) string {
	cred := b.User
	if password != "" {
		cred += ":" + password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC", cred, b.Host, b.Port, b.Database)
}

// Dialector selects the gorm dialector for the configured driver.
func Dialector(b config.BackendConfig) (gorm.Dialector, error) {
	switch b.Driver {
	case config.DriverPostgres:
		return postgres.Open(PostgresDSN(b, b.Password())), nil
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(b, b.Password())), nil
	case config.DriverSQLite:
		return sqlite.Open(b.Path), nil
	case config.DriverNone, "":
		return nil, ErrNoBackend
	}
	return nil, fmt.Errorf("db: unsupported driver %q", b.Driver)
}

// Connect opens and pings the configured backend.
func Connect(ctx context.Context, b config.BackendConfig) (*gorm.DB, error) {
	dialector, err := Dialector(b)
	if err != nil {
		return nil, err
	}
	db, err := Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("db: connect to %s backend: %w", b.Driver, err)
	}

	timeout := time.Duration(b.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("db: ping %s backend: %w", b.Driver, err)
	}
	return db, nil
}

// Open wraps gorm.Open with the settings every qadesk connection uses.
// TranslateError maps driver duplicate-key errors to gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}
