package postgres

import (
	"fmt"

	"movieapi/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Options struct {
	DBName   string
	DBUser   string
	Password string
	Host     string
	Port     string
	SSLMode  bool
}

// OptionsFrom converts a configured database into connection options.
func OptionsFrom(db config.Database) Options {
	return Options{
		DBName:   db.Name,
		DBUser:   db.User,
		Password: db.Pass,
		Host:     db.Host,
		Port:     fmt.Sprintf("%d", db.Port),
		SSLMode:  db.EnableSSL,
	}
}

func NewConnection(opts Options) (*gorm.DB, error) {
	sslmode := "disable"
	if opts.SSLMode {
		sslmode = "require"
	}

	datasource := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		opts.Host, opts.Port, opts.DBUser, opts.Password, opts.DBName, sslmode,
	)

	return gorm.Open(postgres.Open(datasource), &gorm.Config{})
}
