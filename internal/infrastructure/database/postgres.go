package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sangkips/salonpos-api/internal/config"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects to the database selected by cfg.Driver
func Open(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteDB(cfg.SQLitePath, debug, log)
	default:
		return NewPostgresDB(cfg, debug, log)
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), gormConfig(debug, log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("connected to database", zap.String("driver", "postgres"), zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}

// NewSQLiteDB opens a SQLite database file, or an in-memory database for a
// "file:...?mode=memory" DSN. Foreign keys are switched on.
func NewSQLiteDB(dsn string, debug bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug, log))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	log.Info("connected to database", zap.String("driver", "sqlite"), zap.String("dsn", dsn))
	return db, nil
}

func gormConfig(debug bool, log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:  newGormLogger(zap.NewStdLog(log.Named("gorm")), debug),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// newGormLogger writes SQL logs through w. Lookups that find nothing are
// a normal outcome for the repositories and are not logged.
func newGormLogger(w logger.Writer, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
