package config // package config loads application configuration from environment variables

import (
	"log"      // log is used to report configuration errors and halt execution
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env                string // application environment (e.g. "dev", "prod")
	Port               string // HTTP port to listen on
	DBUser             string // database username
	DBPass             string // database password (optional)
	DBHost             string // database host address
	DBPort             string // database port number
	DBName             string // database name
	AccessTokenSecret  string // secret used to sign access tokens
	RefreshTokenSecret string // secret used to sign refresh tokens
	AccessTTLMin       int    // access token time‑to‑live in minutes
	RefreshTTLMin      int    // refresh token time‑to‑live in minutes
	BcryptCost         int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The two token
// secrets must differ: a leaked access token must never be usable as a
// refresh token, so sharing one secret between both kinds is a startup error.
func Load() Config {
	cfg := Config{
		Env:                must("APP_ENV"),                       // environment (dev/test/prod)
		Port:               must("APP_PORT"),                      // port to bind the HTTP server
		DBUser:             must("DB_USER"),                       // database user
		DBPass:             os.Getenv("DB_PASS"),                  // database password (empty allowed)
		DBHost:             must("DB_HOST"),                       // database host
		DBPort:             must("DB_PORT"),                       // database port
		DBName:             must("DB_NAME"),                       // database name
		AccessTokenSecret:  must("ACCESS_TOKEN_SECRET"),           // signing secret for access tokens
		RefreshTokenSecret: must("REFRESH_TOKEN_SECRET"),          // signing secret for refresh tokens
		AccessTTLMin:       envInt("ACCESS_TOKEN_TTL_MIN", 15),    // TTL for access tokens (minutes)
		RefreshTTLMin:      envInt("REFRESH_TOKEN_TTL_MIN", 1440), // TTL for refresh tokens (minutes, 24h)
		BcryptCost:         envInt("BCRYPT_COST", 12),             // bcrypt cost factor
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be distinct")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envInt reads an optional integer environment variable and falls back to
// the provided default when the variable is unset.  A set-but-unparsable
// value is a configuration mistake and aborts startup.
func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
