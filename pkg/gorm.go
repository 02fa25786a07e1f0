package pkg

import (
	"fmt"
	"strings"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase opens the canonical store. DATABASE_URL values starting with
// "postgres" select PostgreSQL, anything else is treated as a SQLite path.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	if isPostgresURL(cfg.DatabaseURL) {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(sqliteDSN(strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")))
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		// one writer keeps SQLite from returning SQLITE_BUSY under load
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}
