package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var Empty = new(Config)

type Config struct {
	AppEnv       string  `envconfig:"APP_ENV"`
	Port         int     `envconfig:"PORT" default:"8080"`
	SentryDSN    string  `envconfig:"SENTRY_DSN"`
	AllowOrigins string  `envconfig:"ALLOW_ORIGINS"`
	PublicURL    string  `envconfig:"PUBLIC_URL"`
	Locale       string  `envconfig:"LOCALE" default:"en"`
	RateLimit    float64 `envconfig:"RATE_LIMIT" default:"20"`

	// DB is the movie catalog store.
	DB struct {
		Name      string `envconfig:"DB_NAME"`
		Host      string `envconfig:"DB_HOST"`
		Port      int    `envconfig:"DB_PORT"`
		User      string `envconfig:"DB_USER"`
		Pass      string `envconfig:"DB_PASS"`
		EnableSSL bool   `envconfig:"ENABLE_SSL"`
	}
	// RatingsDB is the ratings store. Unset fields fall back to DB.
	RatingsDB struct {
		Name      string `envconfig:"RATINGS_DB_NAME"`
		Host      string `envconfig:"RATINGS_DB_HOST"`
		Port      int    `envconfig:"RATINGS_DB_PORT"`
		User      string `envconfig:"RATINGS_DB_USER"`
		Pass      string `envconfig:"RATINGS_DB_PASS"`
		EnableSSL *bool  `envconfig:"RATINGS_ENABLE_SSL"`
	}
}

// Database holds the connection settings of one store.
type Database struct {
	Name      string
	Host      string
	Port      int
	User      string
	Pass      string
	EnableSSL bool
}

func (c *Config) MoviesDatabase() Database {
	return Database{
		Name:      c.DB.Name,
		Host:      c.DB.Host,
		Port:      c.DB.Port,
		User:      c.DB.User,
		Pass:      c.DB.Pass,
		EnableSSL: c.DB.EnableSSL,
	}
}

func (c *Config) RatingsDatabase() Database {
	db := c.MoviesDatabase()
	if c.RatingsDB.Name != "" {
		db.Name = c.RatingsDB.Name
	}
	if c.RatingsDB.Host != "" {
		db.Host = c.RatingsDB.Host
	}
	if c.RatingsDB.Port != 0 {
		db.Port = c.RatingsDB.Port
	}
	if c.RatingsDB.User != "" {
		db.User = c.RatingsDB.User
	}
	if c.RatingsDB.Pass != "" {
		db.Pass = c.RatingsDB.Pass
	}
	if c.RatingsDB.EnableSSL != nil {
		db.EnableSSL = *c.RatingsDB.EnableSSL
	}
	return db
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}
