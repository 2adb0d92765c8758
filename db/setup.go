package db

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/speeddate-dev/speeddate/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Open(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		cfg, err := gomysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		// Timestamps scan into time.Time only with parseTime.
		cfg.ParseTime = true
		dialector = mysql.New(mysql.Config{DSNConfig: cfg})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
}

func ConnectDatabase(driver, dsn string) error {
	var err error

	DB, err = Open(driver, dsn, logger.Warn)

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.UserProfile{},
		&models.SharedContact{},
		&models.Notification{},
		&models.DateMatch{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Review{},
	}

	return DB.AutoMigrate(models...)
}
