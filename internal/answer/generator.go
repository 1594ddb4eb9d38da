// Package answer produces model answers grounded in the portfolio context.
package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kalambet/folio/internal/proxy"
)

// MissingKeyAnswer is returned as the answer when no API key is configured.
const MissingKeyAnswer = "OpenRouter API key is not configured."

const (
	temperature = 0.2
	maxTokens   = 300
)

// ErrExternalService is matched by every failure of the hosted model call.
var ErrExternalService = errors.New("external service failure")

// ErrNoChoices means the model responded without any choices.
var ErrNoChoices = fmt.Errorf("openrouter returned no choices: %w", ErrExternalService)

// EmptyResponseError means the first choice carried no usable text.
type EmptyResponseError struct {
	RawChoice string
}

func (e *EmptyResponseError) Error() string {
	return "openrouter returned an empty response. Raw choice: " + e.RawChoice
}

func (e *EmptyResponseError) Unwrap() error { return ErrExternalService }

// Completer is the hosted model client used by the Generator.
type Completer interface {
	HasAPIKey() bool
	Complete(ctx context.Context, req proxy.CompletionRequest) (*proxy.CompletionResponse, error)
}

// Generator asks the hosted model to answer from the portfolio context.
type Generator struct {
	client Completer
	model  string
}

// NewGenerator creates a Generator that sends requests for model.
func NewGenerator(client Completer, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate returns the model's answer to message. When no API key is
// configured it returns MissingKeyAnswer without contacting the model. Any
// failure of the call itself matches ErrExternalService.
func (g *Generator) Generate(ctx context.Context, message string, history []Turn, contextBlob string) (string, error) {
	if !g.client.HasAPIKey() {
		return MissingKeyAnswer, nil
	}

	resp, err := g.client.Complete(ctx, proxy.CompletionRequest{
		Model:       g.model,
		Messages:    BuildMessages(message, history, contextBlob),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExternalService, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	choice := resp.Choices[0]
	text := choice.Message.Content.Text()
	if text == "" {
		// Some providers put plain text at the top level of the choice.
		text = choice.Text.Text()
	}
	if text == "" {
		return "", &EmptyResponseError{RawChoice: string(choice.Raw)}
	}
	return text, nil
}
