package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/linebot-module/internal/domain"
)

// Keyword answers a small set of text commands, first match wins:
//   - "hello" / "hi" as a word anywhere -> greeting
//   - "help" as a word anywhere -> command list
//   - "echo " prefix -> the rest of the message
//   - anything else -> acknowledgement with a pointer to help
type Keyword struct {
	Base
}

const keywordHelp = "I can respond to:\n- hello/hi: say hello\n- help: show this help\n- echo <text>: repeat your text"

func (Keyword) HandleText(_ context.Context, msg *domain.TextMessage) (string, error) {
	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)

	switch {
	case containsWord(lower, "hello") || containsWord(lower, "hi"):
		return fmt.Sprintf("Hello! Nice to meet you, %s!", msg.UserID), nil

	case containsWord(lower, "help"):
		return keywordHelp, nil

	case strings.HasPrefix(lower, "echo "):
		return "You said: " + strings.TrimSpace(text[5:]), nil

	default:
		return fmt.Sprintf("Got your message: %s\nType 'help' to see what I can do.", msg.Text), nil
	}
}

func (Keyword) HandleImage(context.Context, *domain.ImageMessage) (string, error) {
	return "Thanks for sharing the image! I've received it.", nil
}

// containsWord reports whether word appears in s as a whole word.
func containsWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if f == word {
			return true
		}
	}
	return false
}
