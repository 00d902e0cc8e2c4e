package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	// зона календаря должна грузиться и в контейнере без tzdata
	_ "time/tzdata"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`

	DB struct {
		Driver         string `env:"DB_DRIVER" envDefault:"postgres"`
		DSN            string `env:"DB_DSN"`
		SQLitePath     string `env:"SQLITE_PATH" envDefault:"booking_calendar.db"`
		MigrationsPath string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	}

	HTTP struct {
		Port       string `env:"HTTP_PORT" envDefault:"3000"`
		CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://127.0.0.1:5173"`
	}

	Auth struct {
		JWTSecret     string        `env:"JWT_SECRET"`
		OwnerEmail    string        `env:"OWNER_EMAIL"`
		OwnerPassword string        `env:"OWNER_PASSWORD"`
		TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	}

	Calendar struct {
		Timezone string   `env:"CALENDAR_TIMEZONE" envDefault:"Europe/London"`
		SeedDays int      `env:"SEED_DAYS" envDefault:"3650"`
		Pegs     []string `env:"SEED_PEGS" envSeparator:"," envDefault:"Peg 1,Peg 2,Peg 3"`
	}

	Telegram struct {
		Token   string `env:"TELEGRAM_TOKEN"`
		OwnerID int64  `env:"TELEGRAM_OWNER_ID"`
	}

	location *time.Location
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.DB.Driver = strings.ToLower(c.DB.Driver)
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	pegs := make([]string, 0, len(c.Calendar.Pegs))
	for _, peg := range c.Calendar.Pegs {
		if peg = strings.TrimSpace(peg); peg != "" {
			pegs = append(pegs, peg)
		}
	}
	c.Calendar.Pegs = pegs

	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return fmt.Errorf("load CALENDAR_TIMEZONE %q: %w", c.Calendar.Timezone, err)
	}
	c.location = loc

	return nil
}

// RequireAuth проверяет что заданы поля для входа владельца
func (c *Config) RequireAuth() error {
	if c.Auth.JWTSecret == "" || c.Auth.OwnerEmail == "" || c.Auth.OwnerPassword == "" {
		return fmt.Errorf("JWT_SECRET, OWNER_EMAIL and OWNER_PASSWORD are required")
	}
	return nil
}

// Location зона календаря
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}
