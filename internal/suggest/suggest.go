// Package suggest asks a chat-completion model for flyer suggestions.
package suggest

import (
	"context"
	"errors"
	"fmt"

	"flygen/internal/domain"
)

var (
	// ErrNoSuggestions means the model answered but without the fields we
	// need.
	ErrNoSuggestions = errors.New("suggest: no suggestions")
	// ErrProviderFailure wraps transport errors, non-2xx responses and
	// malformed JSON.
	ErrProviderFailure = fmt.Errorf("suggest: %w", domain.ErrProviderFailure)
)

// FailureMessage is shown inline next to the notes field when suggestions
// cannot be produced.
const FailureMessage = "We couldn't generate personalized suggestions. You can still add notes below."

// ElementSuggestions are free-form element and instruction ideas.
type ElementSuggestions struct {
	Elements     []string `json:"elements"`
	Instructions string   `json:"instructions"`
	Provider     string   `json:"provider,omitempty"`
}

// SmartExtras are structured photo and decoration suggestions.
type SmartExtras struct {
	DetectedItems        []string `json:"detectedItems"`
	PhotoCount           int      `json:"photoCount"`
	AllowsMultiplePhotos bool     `json:"allowsMultiplePhotos"`
	PhotoPrompts         []string `json:"photoPrompts"`
	DecorativeElements   []string `json:"decorativeElements"`
	Provider             string   `json:"provider,omitempty"`
}

// Request carries the project a suggestion is for.
type Request struct {
	Project *domain.Project
	Locale  string
}

type Suggester interface {
	Elements(ctx context.Context, req Request) (*ElementSuggestions, error)
	SmartExtras(ctx context.Context, req Request) (*SmartExtras, error)
}

// UserMessage converts a suggestion error into the short retryable text
// shown to the user. It returns "" for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return FailureMessage
}
