package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/linebot-module/internal/logging"
)

// envKeys lists the environment variables recognized as configuration,
// matched case-insensitively.
var envKeys = map[string]bool{
	"line_channel_access_token": true,
	"line_channel_secret":       true,
	"host":                      true,
	"port":                      true,
	"debug":                     true,
	"ngrok_url":                 true,
	"log_level":                 true,
	"handler":                   true,
	"openai_api_key":            true,
	"openai_model":              true,
	"openai_base_url":           true,
	"assistant_prompt":          true,
	"shutdown_timeout":          true,
}

// Load reads configuration from the given YAML file, then overlays
// environment variables (LINE_CHANNEL_SECRET -> line_channel_secret, etc.).
// A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// Unrecognized variables map to "" and are dropped by koanf.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !envKeys[key] {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to the given YAML file path. The file holds
// credentials, so it is created owner-readable only.
func (c *Config) Save(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.LineChannelAccessToken = mask(cp.LineChannelAccessToken)
	cp.LineChannelSecret = mask(cp.LineChannelSecret)
	cp.OpenAIAPIKey = mask(cp.OpenAIAPIKey)
	return &cp
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}

// validHandlers is the set of recognized handler values.
var validHandlers = map[HandlerType]bool{
	HandlerEcho:      true,
	HandlerKeyword:   true,
	HandlerAssistant: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	if !validHandlers[c.Handler] {
		return fmt.Errorf("invalid handler %q: must be one of echo, keyword, assistant", c.Handler)
	}

	if c.Handler == HandlerAssistant && c.OpenAIAPIKey == "" {
		return fmt.Errorf("openai_api_key is required when handler is assistant")
	}

	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}

	return nil
}

// Warnings lists settings that are valid but will make the service
// misbehave at runtime.
func (c *Config) Warnings() []string {
	var w []string
	if c.LineChannelAccessToken == "" {
		w = append(w, "line_channel_access_token is empty: outbound calls will fail authentication")
	}
	if c.LineChannelSecret == "" {
		w = append(w, "line_channel_secret is empty: every webhook request will be rejected as unsigned")
	}
	return w
}
