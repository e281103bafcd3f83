package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cms-search/domain"
)

type Config struct {
	// Database is nil when no database is configured; the service then runs on the in-memory store.
	Database      *DatabaseConfig
	HTTP          HTTPConfig
	Indexer       IndexerConfig
	Auth          AuthConfig
	PublicBaseURL string
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

type IndexerConfig struct {
	BatchSize    int
	SyncTimeout  time.Duration
	MeiliTimeout time.Duration
}

type AuthConfig struct {
	ServiceName        string
	ServiceTokenSecret string
}

func Load() (*Config, error) {
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: dbConfig,
		HTTP: HTTPConfig{
			Addr:              HTTPAddr,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   ShutdownTimeout,
		},
		Indexer: IndexerConfig{
			BatchSize:    IndexBatchSize,
			SyncTimeout:  SyncTimeout,
			MeiliTimeout: MeiliTimeout,
		},
		Auth: AuthConfig{
			ServiceName:        getEnvOrDefault("SERVICE_NAME", "cms-search"),
			ServiceTokenSecret: getEnvOrDefault("SERVICE_TOKEN_SECRET", ""),
		},
		PublicBaseURL: domain.NormalizeBaseURL(getEnvOrDefault("PUBLIC_BASE_URL", "")),
	}

	if cfg.Indexer.BatchSize <= 0 {
		return nil, fmt.Errorf("INDEX_BATCH_SIZE must be positive, got %d", cfg.Indexer.BatchSize)
	}
	if cfg.Auth.ServiceTokenSecret == "" {
		slog.Warn("SERVICE_TOKEN_SECRET is not set, internal routes will reject every request")
	}

	attrs := []any{
		"http_addr", cfg.HTTP.Addr,
		"public_base_url", cfg.PublicBaseURL,
		"index_batch_size", cfg.Indexer.BatchSize,
	}
	if cfg.Database != nil {
		attrs = append(attrs, "db_host", cfg.Database.Host, "db_sslmode", cfg.Database.SSL.Mode)
	} else {
		attrs = append(attrs, "content_store", "memory")
	}
	slog.Info("Configuration loaded", attrs...)

	return cfg, nil
}

// loadDatabaseConfig prefers DATABASE_URL, then DB_* parts, and returns nil when neither is set.
func loadDatabaseConfig() (*DatabaseConfig, error) {
	if dsn := getEnvOrDefault("DATABASE_URL", ""); dsn != "" {
		return &DatabaseConfig{URL: dsn, Timeout: DBTimeout}, nil
	}
	if getEnvOrDefault("DB_HOST", "") == "" {
		return nil, nil
	}

	dbConfig := NewDatabaseConfigFromEnv()
	var missing []string
	for _, field := range []struct{ key, value string }{
		{"DB_NAME", dbConfig.Name},
		{"DB_USER", dbConfig.User},
		{"DB_PASSWORD", dbConfig.Password},
	} {
		if field.value == "" {
			missing = append(missing, field.key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("database configuration incomplete, missing %s", strings.Join(missing, ", "))
	}

	if err := dbConfig.ValidateSSLConfig(); err != nil {
		slog.Error("Invalid SSL configuration", "error", err)
		return nil, fmt.Errorf("SSL configuration error: %w", err)
	}
	return dbConfig, nil
}

// getEnvOrDefault reads KEY_FILE first so secrets can be mounted as files.
func getEnvOrDefault(key, defaultValue string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
		slog.Warn("failed to read secret file", "key", key, "error", err)
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
