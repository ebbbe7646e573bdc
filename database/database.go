package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/models"
)

var ErrUnsupportedURL = errors.New("unsupported database url")

type DB struct {
	*gorm.DB
}

// Connect opens the database named by url. postgres:// and postgresql://
// URLs (or key=value DSNs) use the postgres driver, sqlite:// URLs use
// sqlite with foreign keys enforced.
func Connect(url string) (*DB, error) {
	dialector, isSQLite, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if isSQLite {
		// a single connection keeps in-memory databases alive and
		// serializes writers
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	logrus.WithField("sqlite", isSQLite).Info("Database connection established")
	return &DB{gormDB}, nil
}

// Migrate creates or updates the users, messages, follows and likes tables
func (db *DB) Migrate() error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(url string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"),
		strings.Contains(url, "host="):
		return postgres.Open(url), false, nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(url, "sqlite://"))), true, nil
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnsupportedURL, url)
	}
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		path = "file::memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
