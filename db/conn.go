// Package db opens the relational store that holds users and materials
package db

import (
	"campusshare/api/internal/model"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver string // sqlite or postgres
	DSN    string
	// Reset removes the SQLite file before opening it
	Reset bool
	// LogSQL prints every statement, meant for debugging
	LogSQL bool
}

func New(c Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch c.Driver {
	case "", "sqlite":
		if c.Reset {
			if err := os.Remove(c.DSN); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to remove database file, %w", err)
			}

			zap.L().Warn("Database file removed, starting with an empty database", zap.String("path", c.DSN))
		}

		dialector = sqlite.Open(c.DSN)
	case "postgres":
		if c.Reset {
			return nil, errors.New("resetting is only supported for SQLite databases")
		}

		dialector = postgres.Open(c.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	level := logger.Warn
	if c.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Turns unique constraint violations into gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         newRedactingLogger(logger.Default.LogMode(level)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", c.Driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(model.User{}, model.Material{})
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}
