package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	OrderAPIURL     string
	OrderAPITimeout time.Duration

	SnapshotStore string
	CartTTL       time.Duration
	CartIdleTTL   time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	MigrationsDir string

	RabbitMQURL string

	SessionCookieSecure bool
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads flags from args, then the .env file they point at, then the
// process environment. Flags set explicitly win over the environment.
func Load(args []string) (*Config, error) {
	var envFile, port, store string

	flagSet := pflag.NewFlagSet("storefront-api", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "path to a .env file (missing file is ignored)")
	flagSet.StringVar(&port, "port", "", "HTTP port (overrides HTTP_PORT)")
	flagSet.StringVar(&store, "snapshot-store", "", "cart snapshot store: redis, postgres or memory (overrides SNAPSHOT_STORE)")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OrderAPIURL: getEnv("ORDER_API_URL", "http://localhost:8074/api"),

		SnapshotStore: getEnv("SNAPSHOT_STORE", StoreRedis),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "ticket_storefront"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
	}

	var err error
	if cfg.OrderAPITimeout, err = getDuration("ORDER_API_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CartTTL, err = getDuration("CART_TTL", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CartIdleTTL, err = getDuration("CART_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SessionCookieSecure, err = getBool("SESSION_COOKIE_SECURE", cfg.IsProduction()); err != nil {
		return nil, err
	}

	if flagSet.Changed("port") {
		cfg.HTTPPort = port
	}
	if flagSet.Changed("snapshot-store") {
		cfg.SnapshotStore = store
	}
	cfg.SnapshotStore = strings.ToLower(strings.TrimSpace(cfg.SnapshotStore))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SnapshotStore {
	case StoreRedis, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown snapshot store %q (want redis, postgres or memory)", c.SnapshotStore)
	}

	if c.HTTPPort == "" {
		return errors.New("HTTP port must not be empty")
	}

	return nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
