package config // package config loads application configuration from environment variables

import (
    "log"     // log reports configuration errors before the structured logger exists
    "os"      // os provides access to environment variables

    "github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Redis, cache and rate-limit settings live in
// their own loaders (redis.go, cache.go, ratelimit.go).
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    MigrateOnStart   bool   // apply pending migrations when the server boots
    SecretKey        string // HMAC key used to sign flash cookies
    CSRFEnabled      bool   // protect form submissions with a CSRF token
    LogLevel         string // logrus level name
    LogFile          string // file receiving warnings and errors; empty disables it
    AMQPURL          string // broker URL for activity events; empty disables publishing
    ConsumerEnabled  bool   // run the activity log consumer next to the server
    ActivityLogDir   string // directory the consumer writes activity.log into
}

// Load reads an optional .env file, then configuration values from the
// environment.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
func Load() Config {
    // A missing .env is normal outside local development.
    _ = godotenv.Load()

    return Config{
        Env:             must("APP_ENV"),
        Port:            must("APP_PORT"),
        DBUser:          must("DB_USER"),
        DBPass:          os.Getenv("DB_PASS"), // empty allowed
        DBHost:          must("DB_HOST"),
        DBPort:          must("DB_PORT"),
        DBName:          must("DB_NAME"),
        MigrateOnStart:  envBool("DB_MIGRATE_ON_START", false),
        SecretKey:       must("SECRET_KEY"),
        CSRFEnabled:     envBool("CSRF_ENABLED", true),
        LogLevel:        envStr("LOG_LEVEL", "info"),
        LogFile:         logFile(),
        AMQPURL:         amqpURL(),
        ConsumerEnabled: envBool("ACTIVITY_CONSUMER_ENABLED", false),
        ActivityLogDir:  envStr("ACTIVITY_LOG_DIR", "logs"),
    }
}

// DBConfig is the subset of the configuration needed to reach the
// database.  Tools such as cmd/migrate load only this part.
type DBConfig struct {
    User string
    Pass string
    Host string
    Port string
    Name string
}

// LoadDB reads an optional .env file, then the DB_* variables.
func LoadDB() DBConfig {
    _ = godotenv.Load()
    return DBConfig{
        User: must("DB_USER"),
        Pass: os.Getenv("DB_PASS"),
        Host: must("DB_HOST"),
        Port: must("DB_PORT"),
        Name: must("DB_NAME"),
    }
}

// amqpURL returns RABBITMQ_URL, falling back to AMQP_URL.  Unlike the
// other settings there is no localhost default: no URL means no broker.
func amqpURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
}

// logFile returns LOG_FILE, defaulting to error.log when the variable is
// unset.  Setting it to an empty string disables the file sink.
func logFile() string {
    if v, ok := os.LookupEnv("LOG_FILE"); ok {
        return v
    }
    return "error.log"
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
