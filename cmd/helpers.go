package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/assistant"
	"github.com/ziadkadry99/linebot-module/internal/config"
	"github.com/ziadkadry99/linebot-module/internal/handler"
	"github.com/ziadkadry99/linebot-module/internal/line"
	"github.com/ziadkadry99/linebot-module/internal/logging"
	"github.com/ziadkadry99/linebot-module/internal/metrics"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `linebot init` to create a config file", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

func newClient(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *line.Client {
	return line.NewClient(cfg.LineChannelAccessToken, logger.Named("line"), line.WithMetrics(m))
}

// newHandler returns the message handler selected by cfg.Handler.
func newHandler(cfg *config.Config) (handler.Handler, error) {
	switch cfg.Handler {
	case config.HandlerEcho, "":
		return handler.Echo{}, nil
	case config.HandlerKeyword:
		return handler.Keyword{}, nil
	case config.HandlerAssistant:
		return assistant.New(assistant.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Prompt:  cfg.AssistantPrompt,
		}), nil
	default:
		return nil, fmt.Errorf("unknown handler %q", cfg.Handler)
	}
}
