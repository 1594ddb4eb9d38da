package config

import (
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Proxy   ProxyConfig
	Log     LogConfig
	App     AppConfig
}

type ServerConfig struct {
	Port        int
	CORSOrigins string // comma-separated
}

type StorageConfig struct {
	DataDir string
}

type ProxyConfig struct {
	OpenRouterAPIKey string
	Model            string
	BaseURL          string
	Timeout          string // time.Duration string, e.g. "30s"
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	Env string
}

// CORSOriginList splits the configured origins, dropping empty entries.
func (s ServerConfig) CORSOriginList() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: "http://localhost:5173",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Proxy: ProxyConfig{
			Model:   "meta-llama/llama-3.1-8b-instruct:free",
			BaseURL: "https://openrouter.ai/api/v1",
			Timeout: "30s",
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			Env: "development",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/folio/config.json, applies FOLIO_* environment overrides,
// and finally consults the secrets file for the OpenRouter API key.
//
// A missing API key is not an error: the chat pipeline answers with a fixed
// notice instead of calling OpenRouter.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()), secretsFile{path: secretsFilePath()})
}

// secretReader abstracts secret lookup for testing.
type secretReader interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, secrets secretReader) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Proxy.OpenRouterAPIKey == "" {
		if key, err := secrets.Get("folio", "openrouter_api_key"); err == nil && key != "" {
			cfg.Proxy.OpenRouterAPIKey = key
		}
	}

	return cfg, nil
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "folio-data"
		}
	}
	return filepath.Join(dir, "folio")
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "folio", "config.json")
}
