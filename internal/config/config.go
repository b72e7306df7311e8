package config // package config loads application configuration from environment variables

import (
    "log"     // log reports configuration errors and halts execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The JWT secret is loaded here once and passed
// down explicitly to every component that signs or verifies tokens; there is
// no ambient signing state anywhere else in the process.
type Config struct {
    Env             string // application environment (e.g. "dev", "prod")
    Port            string // HTTP port to listen on
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    JWTSecret       string // secret used to sign JWTs (access, refresh, session)
    AccessTTLMin    int    // admin access token time-to-live in minutes
    RefreshTTLDays  int    // admin refresh token time-to-live in days
    SessionTTLDays  int    // storefront session token time-to-live in days
    BcryptCost      int    // bcrypt cost for password hashing
    AdminDefaultPwd string // password for the seeded admin account (optional)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  In particular a
// missing JWT_SECRET refuses to start the server rather than falling back
// to a baked-in default.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),
        Port:            must("APP_PORT"),
        DBUser:          must("DB_USER"),
        DBPass:          os.Getenv("DB_PASS"), // empty allowed
        DBHost:          must("DB_HOST"),
        DBPort:          must("DB_PORT"),
        DBName:          must("DB_NAME"),
        JWTSecret:       must("JWT_SECRET"),
        AccessTTLMin:    envInt("ACCESS_TOKEN_TTL_MIN", 15),
        RefreshTTLDays:  envInt("REFRESH_TOKEN_TTL_DAYS", 7),
        SessionTTLDays:  envInt("SESSION_TOKEN_TTL_DAYS", 7),
        BcryptCost:      envInt("BCRYPT_COST", 10),
        AdminDefaultPwd: os.Getenv("ADMIN_DEFAULT_PASSWORD"),
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

// envInt reads an integer environment variable, falling back to a default
// when the variable is unset.  A value that fails to parse is fatal so a
// typo in deployment config is caught at startup rather than at runtime.
func envInt(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
