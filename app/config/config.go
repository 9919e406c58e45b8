package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"StockDesk/app/security"
)

// Backend modes.
const (
	ModeLocal    = "local"
	ModePostgres = "postgres"
	ModeRest     = "rest"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Backend  BackendConfig  `json:"backend"`
	Realtime RealtimeConfig `json:"realtime"`
	Logging  LoggingConfig  `json:"logging"`

	// UserID scopes every backend call
	UserID string `json:"user_id"`
}

// BackendConfig selects and parameterizes the entity backend
type BackendConfig struct {
	// Mode is one of local, postgres, rest
	Mode string `json:"mode"`

	// SQLitePath is the local database file for local mode
	SQLitePath string `json:"sqlite_path"`

	Postgres PostgresConfig `json:"postgres"`

	// RestURL is the base URL of the hosted entity service
	RestURL string `json:"rest_url"`
	// ServiceKey is stored encrypted at rest
	ServiceKey string `json:"service_key"`
}

// PostgresConfig holds server database connection settings
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

// DSN builds the connection string for the server database
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.Username, p.Password, p.Database, p.SSLMode)
}

// RealtimeConfig holds the change-feed settings
type RealtimeConfig struct {
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `json:"level"`
	Environment string `json:"environment"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	dir := os.Getenv("STOCKDESK_CONFIG_DIR")
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		dir = filepath.Join(configDir, "StockDesk")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return filepath.Join(dir, "config.json"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			Mode:       ModeLocal,
			SQLitePath: "./data/stockdesk.db",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "stockdesk",
				Username: "postgres",
				Password: "postgres",
				SSLMode:  "disable",
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Environment: "development",
		},
		UserID: "default",
	}
}

// LoadConfig loads configuration from config.json, applies environment
// overrides (.env is honored when present) and decrypts the service key
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; environment variables still apply
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	// Decrypt sensitive fields. Keys supplied via the environment are
	// plaintext, so this happens before the overrides.
	if cfg.Backend.ServiceKey != "" {
		keeper, err := security.NewKeeper()
		if err != nil {
			return nil, err
		}
		key, err := keeper.Decrypt(cfg.Backend.ServiceKey)
		if err != nil {
			return nil, fmt.Errorf("could not decrypt service key: %w", err)
		}
		cfg.Backend.ServiceKey = key
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

func (cfg *AppConfig) applyEnvOverrides() {
	if v := os.Getenv("STOCKDESK_BACKEND_MODE"); v != "" {
		cfg.Backend.Mode = v
	}
	if v := os.Getenv("STOCKDESK_SQLITE_PATH"); v != "" {
		cfg.Backend.SQLitePath = v
	}
	if v := os.Getenv("STOCKDESK_REST_URL"); v != "" {
		cfg.Backend.RestURL = v
	}
	if v := os.Getenv("STOCKDESK_SERVICE_KEY"); v != "" {
		cfg.Backend.ServiceKey = v
	}
	if v := os.Getenv("STOCKDESK_REALTIME_URL"); v != "" {
		cfg.Realtime.URL = v
		cfg.Realtime.Enabled = true
	}
	if v := os.Getenv("STOCKDESK_USER_ID"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Logging.Environment = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Backend.Postgres.Host = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Backend.Postgres.Database = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Backend.Postgres.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Backend.Postgres.Password = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.Backend.Postgres.SSLMode = v
	}
}

// SaveConfig saves configuration to config.json after encrypting the
// service key
func SaveConfig(cfg *AppConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Copy so the in-memory config keeps the decrypted key
	toSave := *cfg
	if toSave.Backend.ServiceKey != "" {
		keeper, err := security.NewKeeper()
		if err != nil {
			return err
		}
		encrypted, err := keeper.EncryptIfNeeded(toSave.Backend.ServiceKey)
		if err != nil {
			return fmt.Errorf("could not encrypt service key: %w", err)
		}
		toSave.Backend.ServiceKey = encrypted
	}

	data, err := json.MarshalIndent(&toSave, "", "  ")
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}
