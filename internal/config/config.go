package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var ErrMissingSecret = errors.New("SECRET_KEY not found in environment or .env file")

type Config struct {
	Port        string
	DBDriver    string // sqlite | pgx
	DBDSN       string
	LogFile     string
	SecretKey   string
	BcryptCost  int
	CORSOrigins string
}

// Load reads the process environment, after merging an optional .env file
// from the working directory. Variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	switch driver {
	case "":
		driver = "sqlite"
	case "postgres", "postgresql":
		driver = "pgx"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "hrauth.db"
	} // sqlite file in working dir
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		origins = "*"
	}

	cfg := Config{
		Port:        port,
		DBDriver:    driver,
		DBDSN:       dsn,
		LogFile:     os.Getenv("LOG_FILE"),
		SecretKey:   os.Getenv("SECRET_KEY"),
		BcryptCost:  bcryptCost(os.Getenv("BCRYPT_COST")),
		CORSOrigins: origins,
	}
	if cfg.SecretKey == "" {
		return Config{}, ErrMissingSecret
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "pgx" {
		return Config{}, errors.New("unsupported DB_DRIVER " + strconv.Quote(cfg.DBDriver))
	}

	log.Printf("[config] PORT=%s DB_DRIVER=%s LOG_FILE=%s BCRYPT_COST=%d CORS_ORIGINS=%s",
		cfg.Port, cfg.DBDriver, cfg.LogFile, cfg.BcryptCost, cfg.CORSOrigins)
	return cfg, nil
}

func bcryptCost(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 12
	}
	if n < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if n > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return n
}
