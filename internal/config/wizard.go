package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's configure the LINE bot service.")
	fmt.Println("Both credentials are on the Messaging API tab of your channel in the LINE Developers console.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Credentials.
	tokenPrompt := promptui.Prompt{
		Label: "Channel access token",
		Mask:  '*',
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("channel access token: %w", err)
	}
	cfg.LineChannelAccessToken = token

	secretPrompt := promptui.Prompt{
		Label: "Channel secret",
		Mask:  '*',
	}
	secret, err := secretPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("channel secret: %w", err)
	}
	cfg.LineChannelSecret = secret

	// 2. Listen port.
	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p < 1 || p > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 3. Handler.
	handlerPrompt := promptui.Select{
		Label: "Select message handler",
		Items: []string{
			"echo      - repeat text back to the user",
			"keyword   - hello / help / echo commands",
			"assistant - answer with an OpenAI chat model",
		},
	}
	handlerIdx, _, err := handlerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("handler selection: %w", err)
	}
	handlers := []HandlerType{HandlerEcho, HandlerKeyword, HandlerAssistant}
	cfg.Handler = handlers[handlerIdx]

	// 4. OpenAI key when the assistant is selected.
	if cfg.Handler == HandlerAssistant {
		keyPrompt := promptui.Prompt{
			Label: "OpenAI API key",
			Mask:  '*',
		}
		key, err := keyPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("openai api key: %w", err)
		}
		cfg.OpenAIAPIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("Set the webhook URL in the LINE console to <public-url>/api/v1/webhook.")
	return cfg, nil
}
