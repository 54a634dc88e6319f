package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
)

type (
	Config struct {
		Language   string           `json:"language" mapstructure:"language"`
		LogLevel   string           `json:"log_level" mapstructure:"log_level"`
		LogFormat  string           `json:"log_format" mapstructure:"log_format"`
		Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
		GitHub     GitHubConfig     `json:"github" mapstructure:"github"`
		OpenRouter OpenRouterConfig `json:"openrouter" mapstructure:"openrouter"`
		Server     ServerConfig     `json:"server" mapstructure:"server"`

		PathFile string `json:"-" mapstructure:"-"`
	}

	// StorageConfig selects where settings and credentials are persisted.
	StorageConfig struct {
		Driver string `json:"driver" mapstructure:"driver"`
		Path   string `json:"path,omitempty" mapstructure:"path"`
	}

	GitHubConfig struct {
		APIURL string `json:"api_url,omitempty" mapstructure:"api_url"`
	}

	// OpenRouterConfig holds the completion endpoint and the attribution
	// headers OpenRouter shows in its dashboard.
	OpenRouterConfig struct {
		BaseURL string `json:"base_url" mapstructure:"base_url"`
		Referer string `json:"referer" mapstructure:"referer"`
		Title   string `json:"title" mapstructure:"title"`
	}

	// ServerConfig guards the local message endpoint: only the listed
	// origins may call it, and clients must send Token as a bearer token.
	ServerConfig struct {
		Addr           string   `json:"addr" mapstructure:"addr"`
		AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
		Token          string   `json:"token,omitempty" mapstructure:"token"`
	}
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"

	configDirName  = ".prbuddy"
	configFileName = "config.json"
	envPrefix      = "PRBUDDY"

	defaultLang              = LangEN
	defaultLogLevel          = "warn"
	defaultLogFormat         = "pretty"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultReferer           = "https://github.com/pr-buddy-extension"
	defaultTitle             = "PR Buddy"
	defaultServerAddr        = "127.0.0.1:7878"
)

// DefaultAllowedOrigins admits browser extension pages. A trailing * matches
// any suffix.
var DefaultAllowedOrigins = []string{"chrome-extension://*", "moz-extension://*"}

func defaults() map[string]any {
	return map[string]any{
		"language":               defaultLang,
		"log_level":              defaultLogLevel,
		"log_format":             defaultLogFormat,
		"storage.driver":         StorageFile,
		"storage.path":           "",
		"github.api_url":         "",
		"openrouter.base_url":    defaultOpenRouterBaseURL,
		"openrouter.referer":     defaultReferer,
		"openrouter.title":       defaultTitle,
		"server.addr":            defaultServerAddr,
		"server.allowed_origins": DefaultAllowedOrigins,
		"server.token":           "",
	}
}

// LoadConfig reads the config file, creating it with defaults when absent.
// path is either a .json file or a directory under which .prbuddy/config.json
// lives. Every key can be overridden by PRBUDDY_<SECTION>_<KEY>.
func LoadConfig(path string) (*Config, error) {
	configPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeDefaultConfig(configPath); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", configPath)
	}

	v := viper.New()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, domainErrors.ErrConfigInvalid.
			WithError(err).
			WithContext("path", configPath).
			WithContext("detail", "could not read config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", configPath)
	}
	cfg.PathFile = configPath

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is on disk.
func Default(path string) *Config {
	return &Config{
		Language:  defaultLang,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Storage:   StorageConfig{Driver: StorageFile},
		OpenRouter: OpenRouterConfig{
			BaseURL: defaultOpenRouterBaseURL,
			Referer: defaultReferer,
			Title:   defaultTitle,
		},
		Server: ServerConfig{
			Addr:           defaultServerAddr,
			AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
		},
		PathFile: path,
	}
}

func SaveConfig(cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cfg.PathFile == "" {
		return domainErrors.ErrConfigInvalid.WithContext("detail", "config file path is not set")
	}

	return writeConfig(cfg.PathFile, cfg)
}

// EnsureServerToken returns the server token, generating and saving one when
// the config has none.
func EnsureServerToken(cfg *Config) (string, error) {
	if cfg.Server.Token != "" {
		return cfg.Server.Token, nil
	}
	cfg.Server.Token = strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := SaveConfig(cfg); err != nil {
		cfg.Server.Token = ""
		return "", err
	}
	return cfg.Server.Token, nil
}

// StoragePath is the settings store location, defaulting next to the
// config file.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	dir := filepath.Dir(c.PathFile)
	if c.Storage.Driver == StorageSQLite {
		return filepath.Join(dir, "prbuddy.db")
	}
	return filepath.Join(dir, "store.json")
}

func resolvePath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return "", domainErrors.ErrConfigInvalid.
				WithError(err).
				WithContext("detail", "could not resolve home directory")
		}
		path = home
	}
	if filepath.Ext(path) == ".json" {
		return path, nil
	}
	return filepath.Join(path, configDirName, configFileName), nil
}

func writeDefaultConfig(path string) error {
	return writeConfig(path, Default(path))
}

func writeConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", path)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", path)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	invalid := func(detail string) error {
		return domainErrors.ErrConfigInvalid.WithContext("detail", detail)
	}

	if !IsSupportedLanguage(cfg.Language) {
		return invalid(fmt.Sprintf("unsupported language %q", cfg.Language))
	}
	switch cfg.Storage.Driver {
	case StorageFile, StorageSQLite:
	default:
		return invalid(fmt.Sprintf("unsupported storage driver %q", cfg.Storage.Driver))
	}
	switch cfg.LogFormat {
	case "pretty", "text", "json":
	default:
		return invalid(fmt.Sprintf("unsupported log format %q", cfg.LogFormat))
	}
	if cfg.OpenRouter.BaseURL == "" {
		return invalid("openrouter.base_url cannot be empty")
	}
	if cfg.Server.Addr == "" {
		return invalid("server.addr cannot be empty")
	}
	return nil
}
