package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types

	"github.com/joho/godotenv" // loads a local .env file into the process environment
)

// DefaultAdminEmail is the address of the designated administrator when
// ADMIN_EMAIL is not set.
const DefaultAdminEmail = "tutoplus2025@gmail.com"

// Config holds the runtime configuration of the API server. Each field
// corresponds to an environment variable.
type Config struct {
	Env             string // application environment (e.g. "dev", "production")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	AutoMigrate     bool   // apply embedded migrations at startup
	JWTSecret       string // secret used to sign JWTs
	AccessTTLMin    int    // access token time‑to‑live in minutes
	RefreshTTLDays  int    // refresh token time‑to‑live in days
	MagicLinkTTLMin int    // impersonation token time-to-live in minutes
	RecoveryTTLMin  int    // password recovery token time-to-live in minutes
	BcryptCost      int    // bcrypt cost for password hashing
	AdminEmail      string // address the privileged endpoints compare against
	FrontendURL     string // base URL used to build emailed and returned links
}

// Load reads a .env file when present, then builds a Config from the
// environment. Missing required variables stop the process.
func Load() Config {
	_ = godotenv.Load() // a missing .env file is fine in containers

	return Config{
		Env:             getenv("APP_ENV", "dev"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		AutoMigrate:     envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		MagicLinkTTLMin: atoiOr(getenv("MAGIC_LINK_TTL_MIN", "10"), 10),
		RecoveryTTLMin:  atoiOr(getenv("RECOVERY_TTL_MIN", "60"), 60),
		BcryptCost:      mustInt("BCRYPT_COST"),
		AdminEmail:      getenv("ADMIN_EMAIL", DefaultAdminEmail),
		FrontendURL:     getenv("FRONTEND_URL", "http://localhost:3000"),
	}
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

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
