package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits list-valued variables
    "time"    // time parses duration values

    "github.com/shopspring/decimal" // decimal parses the tax rate exactly
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// intervals, a decimal for the tax rate so totals never touch floats.
type Config struct {
    Env             string          // application environment (e.g. "dev", "prod")
    Port            string          // HTTP port to listen on
    DBUser          string          // database username
    DBPass          string          // database password (optional)
    DBHost          string          // database host address
    DBPort          string          // database port number
    DBName          string          // database name
    JWTSecret       string          // secret used to verify staff JWTs
    RestaurantID    uint64          // restaurant this instance serves
    TaxRatePercent  decimal.Decimal // flat tax rate applied to order subtotals
    PollInterval    time.Duration   // table reload interval when push notifications are unavailable
    PushEnabled     bool            // whether the Redis table feed should be used at all
    PrintAgentURL   string          // base URL of the local printer agent
    PrintTimeout    time.Duration   // per-printer dispatch deadline
    KitchenPrinters []string        // device names of the kitchen printer class
    CounterPrinters []string        // device names of the counter/receipt printer class
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional values
// fall back to sensible defaults.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),      // environment (dev/test/prod)
        Port:            must("APP_PORT"),     // port to bind the HTTP server
        DBUser:          must("DB_USER"),      // database user
        DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:          must("DB_HOST"),      // database host
        DBPort:          must("DB_PORT"),      // database port
        DBName:          must("DB_NAME"),      // database name
        JWTSecret:       must("JWT_SECRET"),   // secret used for verifying staff JWTs
        RestaurantID:    mustUint("RESTAURANT_ID"),
        TaxRatePercent:  decimalEnv("TAX_RATE_PERCENT", "10"),
        PollInterval:    durationEnv("TABLE_POLL_INTERVAL", 30*time.Second),
        PushEnabled:     boolEnv("TABLE_PUSH_ENABLED", true),
        PrintAgentURL:   getenv("PRINT_AGENT_URL", "http://127.0.0.1:9100"),
        PrintTimeout:    durationEnv("PRINT_TIMEOUT", 5*time.Second),
        KitchenPrinters: listEnv("KITCHEN_PRINTERS"),
        CounterPrinters: listEnv("COUNTER_PRINTERS"),
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

// mustUint is like must() but converts the retrieved string into an
// unsigned integer.  If conversion fails, the application exits.
func mustUint(key string) uint64 {
    s := must(key)
    n, err := strconv.ParseUint(s, 10, 64)
    if err != nil {
        log.Fatalf("invalid uint for %s: %q", key, s)
    }
    return n
}

// getenv returns the variable's value or a default when unset/empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// boolEnv parses a boolean variable with a default.  All strconv
// forms are accepted (1/t/TRUE/0/f/false...); a malformed value is
// fatal rather than silently disabling the feature.
func boolEnv(key string, def bool) bool {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    b, err := strconv.ParseBool(s)
    if err != nil {
        log.Fatalf("invalid bool for %s: %q", key, s)
    }
    return b
}

// decimalEnv parses a decimal-valued variable with a default.  A
// malformed value is fatal: a wrong tax rate corrupts every total.
func decimalEnv(key, def string) decimal.Decimal {
    s := getenv(key, def)
    d, err := decimal.NewFromString(s)
    if err != nil || d.IsNegative() {
        log.Fatalf("invalid decimal for %s: %q", key, s)
    }
    return d
}

// durationEnv parses a duration-valued variable with a default.
func durationEnv(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil || d <= 0 {
        log.Fatalf("invalid duration for %s: %q", key, s)
    }
    return d
}

// listEnv splits a comma-separated variable into trimmed entries.
// An unset variable yields an empty list.
func listEnv(key string) []string {
    var out []string
    for _, p := range strings.Split(os.Getenv(key), ",") {
        p = strings.TrimSpace(p)
        if p != "" {
            out = append(out, p)
        }
    }
    return out
}
