// Package config loads todump settings in layers: defaults, then TOML
// files, then environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/todump/todump/internal/llm"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// ErrInvalid marks a configuration that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Mode     string       `toml:"mode"`
	DataFile string       `toml:"data_file"`
	Database string       `toml:"database"`
	Neo4j    Neo4jConfig  `toml:"neo4j"`
	Server   ServerConfig `toml:"server"`
	Remote   RemoteConfig `toml:"remote"`
	Log      LogConfig    `toml:"log"`
	LLM      LLMConfig    `toml:"llm"`

	// File is the config file that was loaded last, if any.
	File string `toml:"-"`
}

// Neo4jConfig selects the graph task store when URI is set.
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type RemoteConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Endpoint    string  `toml:"endpoint"`
	TimeoutMs   int     `toml:"timeout_ms"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	LogCalls    bool    `toml:"log_calls"`
}

// Default returns the built-in configuration.
func Default() Config {
	dir := defaultDir()
	l := llm.DefaultConfig()
	return Config{
		Mode:     ModeLocal,
		DataFile: filepath.Join(dir, "todos.json"),
		Database: filepath.Join(dir, "todump.db"),
		Server:   ServerConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "info"},
		LLM: LLMConfig{
			Provider:    string(l.Provider),
			TimeoutMs:   l.TimeoutMs,
			Temperature: l.Temperature,
			MaxTokens:   l.MaxTokens,
		},
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todump"
	}
	return filepath.Join(home, ".todump")
}

// Load builds the effective configuration. flags may be nil; only flags the
// user actually set override earlier layers.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	explicit := os.Getenv("TODUMP_CONFIG")
	if v := flagString(flags, "config"); v != "" {
		explicit = v
	}
	if explicit != "" {
		if err := loadFile(&cfg, explicit); err != nil {
			return nil, err
		}
	} else {
		for _, path := range []string{filepath.Join(defaultDir(), "config.toml"), ".todump.toml"} {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := loadFile(&cfg, path); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyFlags(&cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	cfg.File = path
	return nil
}

func applyEnv(cfg *Config) error {
	strVars := map[string]*string{
		"TODUMP_MODE":           &cfg.Mode,
		"TODUMP_DATA_FILE":      &cfg.DataFile,
		"TODUMP_DATABASE":       &cfg.Database,
		"TODUMP_NEO4J_URI":      &cfg.Neo4j.URI,
		"TODUMP_NEO4J_USER":     &cfg.Neo4j.User,
		"TODUMP_NEO4J_PASSWORD": &cfg.Neo4j.Password,
		"TODUMP_ADDR":           &cfg.Server.Addr,
		"TODUMP_URL":            &cfg.Remote.URL,
		"TODUMP_TOKEN":          &cfg.Remote.Token,
		"TODUMP_LOG_LEVEL":      &cfg.Log.Level,
		"TODUMP_LOG_FORMAT":     &cfg.Log.Format,
		"TODUMP_LLM_PROVIDER":   &cfg.LLM.Provider,
		"TODUMP_LLM_MODEL":      &cfg.LLM.Model,
		"TODUMP_LLM_ENDPOINT":   &cfg.LLM.Endpoint,
	}
	for name, dst := range strVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	// The bare provider variable is honoured as a fallback.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("TODUMP_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	if v := os.Getenv("TODUMP_LLM_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: TODUMP_LLM_TIMEOUT_MS must be a positive integer, got %q", ErrInvalid, v)
		}
		cfg.LLM.TimeoutMs = n
	}
	if v := os.Getenv("TODUMP_LLM_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: TODUMP_LLM_MAX_TOKENS must be a positive integer, got %q", ErrInvalid, v)
		}
		cfg.LLM.MaxTokens = n
	}
	if v := os.Getenv("TODUMP_LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: TODUMP_LLM_TEMPERATURE must be a number, got %q", ErrInvalid, v)
		}
		cfg.LLM.Temperature = f
	}
	if v := os.Getenv("TODUMP_LLM_LOG_CALLS"); v != "" {
		cfg.LLM.LogCalls = boolFromString(v)
	}
	return nil
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case ModeLocal:
	case ModeRemote:
		if c.Remote.URL == "" {
			return fmt.Errorf("%w: remote mode requires remote.url", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalid, ModeLocal, ModeRemote, c.Mode)
	}
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderGemini, llm.ProviderOllama, "":
	default:
		return fmt.Errorf("%w: unknown llm.provider %q", ErrInvalid, c.LLM.Provider)
	}
	return nil
}

// LLMClientConfig converts the llm section into the client configuration.
func (c Config) LLMClientConfig() llm.Config {
	return llm.Config{
		Provider:    llm.Provider(c.LLM.Provider),
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		Endpoint:    c.LLM.Endpoint,
		TimeoutMs:   c.LLM.TimeoutMs,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		LogCalls:    c.LLM.LogCalls,
	}
}
