package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
	Import  ImportConfig
	API     APIConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type ImportConfig struct {
	// MaxFileSize caps an uploaded or read CSV file, in bytes.
	MaxFileSize int
}

type APIConfig struct {
	Token string
}

const (
	secretService  = "jobtrack"
	secretAPIToken = "api_token"
)

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 4000,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Import: ImportConfig{
			MaxFileSize: 5 << 20,
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/jobtrack/config.json and applies JOBTRACK_* environment
// overrides on top.
//
// The API token is taken from JOBTRACK_API_TOKEN when set. Otherwise it is
// read from the secrets file, and generated and saved there on first use.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()), fileSecrets{path: secretsFilePath()})
}

// secretStore abstracts the secrets file for testing.
type secretStore interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

func loadWith(b ConfigBackend, ss secretStore) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Import.MaxFileSize <= 0 {
		return Config{}, fmt.Errorf("import.max_file_size must be positive, got %d", cfg.Import.MaxFileSize)
	}

	if cfg.API.Token == "" {
		token, err := ensureToken(ss)
		if err != nil {
			return Config{}, err
		}
		cfg.API.Token = token
	}

	return cfg, nil
}

func ensureToken(ss secretStore) (string, error) {
	token, err := ss.Get(secretService, secretAPIToken)
	if err == nil && token != "" {
		return token, nil
	}
	if err != nil && !errors.Is(err, errSecretNotFound) {
		slog.Warn("could not read API token, generating a new one", "error", err)
	}

	token = strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := ss.Set(secretService, secretAPIToken, token); err != nil {
		return "", fmt.Errorf("saving generated API token: %w", err)
	}
	return token, nil
}

// ParseLevel maps a log.level value onto a slog level. Unknown values fall
// back to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
