package database

import (
	"fmt"
	"net/url"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config describes one SQLite database file.
type Config struct {
	Path        string
	BusyTimeout time.Duration
	// Logger receives gorm's SQL log; nil keeps gorm quiet.
	Logger logger.Interface
}

// Opener opens a new, independent connection to the same database. The
// background task runner calls it once per task so bulk work never shares
// the interactive connection.
type Opener func() (*gorm.DB, error)

// DSN builds the driver connection string. WAL lets readers run while a
// writer holds the lock, busy_timeout makes a second writer wait instead of
// failing, and _txlock=immediate takes the write lock at BEGIN.
func DSN(cfg Config) string {
	timeout := cfg.BusyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", timeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return cfg.Path + "?" + q.Encode()
}

// Open returns a handle backed by exactly one connection. Every statement on
// the handle is serialized through it, so the handle behaves like a single
// dedicated database connection.
func Open(cfg Config) (*gorm.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	gormLogger := cfg.Logger
	if gormLogger == nil {
		gormLogger = logger.Discard
	}

	db, err := gorm.Open(sqlite.Open(DSN(cfg)), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().Local() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Path, err)
	}
	return db, nil
}

// NewOpener binds cfg so callers can open fresh connections later.
func NewOpener(cfg Config) Opener {
	return func() (*gorm.DB, error) {
		return Open(cfg)
	}
}

// Close releases the connection behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

