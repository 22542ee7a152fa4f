package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	ResolverAgent  = "agent"
	ResolverDirect = "direct"
)

var defaultModels = map[string][2]string{
	ProviderOpenAI: {"gpt-4o-mini", "gpt-4o"},
	ProviderGemini: {"gemini-2.0-flash", "gemini-2.0-flash"},
}

type Config struct {
	DBDSN          string        `yaml:"db_dsn" mapstructure:"db_dsn"`
	Provider       string        `yaml:"provider" mapstructure:"provider"`
	OpenAIBaseURL  string        `yaml:"openai_base_url" mapstructure:"openai_base_url"`
	OpenAIAPIKey   string        `yaml:"openai_api_key" mapstructure:"openai_api_key"`
	GeminiAPIKey   string        `yaml:"gemini_api_key" mapstructure:"gemini_api_key"`
	IntentModel    string        `yaml:"intent_model" mapstructure:"intent_model"`
	ActionModel    string        `yaml:"action_model" mapstructure:"action_model"`
	Resolver       string        `yaml:"resolver" mapstructure:"resolver"`
	MatchThreshold float64       `yaml:"match_threshold" mapstructure:"match_threshold"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`
	MaxTextLength  int           `yaml:"max_text_length" mapstructure:"max_text_length"`
	LogLevel       string        `yaml:"log_level" mapstructure:"log_level"`
	LogFile        string        `yaml:"log_file" mapstructure:"log_file"`
	ListenAddr     string        `yaml:"listen_addr" mapstructure:"listen_addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_dsn", "")
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("intent_model", "")
	v.SetDefault("action_model", "")
	v.SetDefault("resolver", ResolverAgent)
	v.SetDefault("match_threshold", 0.6)
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("http_timeout", "30s")
	v.SetDefault("max_text_length", 2000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("listen_addr", ":8080")
}

// Load reads configuration from path, or from notes.yaml in the usual
// places when path is empty, then overlays NOTES_* environment variables.
// DB_DSN, OPENAI_API_KEY and GEMINI_API_KEY are honoured unprefixed.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("notes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "notes-agent"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "notes-agent"))
		}
	}

	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"db_dsn":         "DB_DSN",
		"openai_api_key": "OPENAI_API_KEY",
		"gemini_api_key": "GEMINI_API_KEY",
	} {
		if err := v.BindEnv(key, "NOTES_"+env, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.applyModelDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyModelDefaults() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Resolver = strings.ToLower(strings.TrimSpace(c.Resolver))
	models, ok := defaultModels[c.Provider]
	if !ok {
		return
	}
	if strings.TrimSpace(c.IntentModel) == "" {
		c.IntentModel = models[0]
	}
	if strings.TrimSpace(c.ActionModel) == "" {
		c.ActionModel = models[1]
	}
}

// Validate checks settings every command needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBDSN) == "" {
		return errors.New("config: db_dsn is required (set DB_DSN)")
	}
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("config: provider %q is invalid (must be openai or gemini)", c.Provider)
	}
	if c.Resolver != ResolverAgent && c.Resolver != ResolverDirect {
		return fmt.Errorf("config: resolver %q is invalid (must be agent or direct)", c.Resolver)
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("config: match_threshold %v must be in (0, 1]", c.MatchThreshold)
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: request_timeout must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("config: http_timeout must be positive")
	}
	if c.MaxTextLength < 1 {
		return errors.New("config: max_text_length must be positive")
	}
	return nil
}

// RequireLLM checks that the selected provider has credentials.
func (c *Config) RequireLLM() error {
	switch c.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("config: openai provider requires OPENAI_API_KEY")
		}
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("config: gemini provider requires GEMINI_API_KEY")
		}
	}
	return nil
}
