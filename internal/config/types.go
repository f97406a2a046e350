package config

import "time"

// HandlerType selects the message handler wired into the router.
type HandlerType string

const (
	HandlerEcho      HandlerType = "echo"
	HandlerKeyword   HandlerType = "keyword"
	HandlerAssistant HandlerType = "assistant"
)

// Config is the top-level service configuration, corresponding to .linebot.yml
// and the process environment.
type Config struct {
	LineChannelAccessToken string        `yaml:"line_channel_access_token" koanf:"line_channel_access_token"`
	LineChannelSecret      string        `yaml:"line_channel_secret" koanf:"line_channel_secret"`
	Host                   string        `yaml:"host" koanf:"host"`
	Port                   int           `yaml:"port" koanf:"port"`
	Debug                  bool          `yaml:"debug" koanf:"debug"`
	NgrokURL               string        `yaml:"ngrok_url,omitempty" koanf:"ngrok_url"`
	LogLevel               string        `yaml:"log_level" koanf:"log_level"`
	Handler                HandlerType   `yaml:"handler" koanf:"handler"`
	OpenAIAPIKey           string        `yaml:"openai_api_key,omitempty" koanf:"openai_api_key"`
	OpenAIModel            string        `yaml:"openai_model" koanf:"openai_model"`
	OpenAIBaseURL          string        `yaml:"openai_base_url,omitempty" koanf:"openai_base_url"`
	AssistantPrompt        string        `yaml:"assistant_prompt,omitempty" koanf:"assistant_prompt"`
	ShutdownTimeout        time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
}
