package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Message is one chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the OpenAI-compatible chat completion request.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// CompletionResponse is the subset of the completion response folio reads.
type CompletionResponse struct {
	ID      string   `json:"id,omitempty"`
	Choices []Choice `json:"choices"`
}

// Choice is one completion candidate. Raw keeps the undecoded JSON so callers
// can report what the provider actually sent.
type Choice struct {
	Message ChoiceMessage   `json:"message"`
	Text    TextContent     `json:"text"`
	Raw     json.RawMessage `json:"-"`
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	type plain Choice
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Choice(p)
	c.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ChoiceMessage is the assistant message of a choice.
type ChoiceMessage struct {
	Role    string      `json:"role"`
	Content TextContent `json:"content"`
}

// ContentPart is one element of a list-form message content.
type ContentPart struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// TextContent holds message content in either of the two shapes providers
// return: a plain string or a list of typed parts. The zero value is empty.
type TextContent struct {
	plain  string
	parts  []ContentPart
	isList bool
}

// Plain returns string-form content.
func Plain(s string) TextContent {
	return TextContent{plain: s}
}

// Parts returns list-form content.
func Parts(parts ...ContentPart) TextContent {
	return TextContent{parts: parts, isList: true}
}


// Text reduces the content to a single trimmed string. Part texts are trimmed,
// empty ones skipped, and the rest joined with newlines.
func (t TextContent) Text() string {
	if !t.isList {
		return strings.TrimSpace(t.plain)
	}
	var texts []string
	for _, p := range t.parts {
		if s := strings.TrimSpace(p.Text); s != "" {
			texts = append(texts, s)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

func (t TextContent) MarshalJSON() ([]byte, error) {
	if t.isList {
		if t.parts == nil {
			return []byte(`[]`), nil
		}
		return json.Marshal(t.parts)
	}
	return json.Marshal(t.plain)
}

// UnmarshalJSON accepts a string, a list of parts, or null. Any other shape
// decodes to empty content rather than failing the whole response.
func (t *TextContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = TextContent{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding text content: %w", err)
		}
		t.plain = s
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding content parts: %w", err)
		}
		t.isList = true
		for _, item := range items {
			var p ContentPart
			// Non-object items carry no text.
			if json.Unmarshal(item, &p) == nil {
				t.parts = append(t.parts, p)
			}
		}
	}
	return nil
}

// Model represents a model entry returned by the /models endpoint.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelList is the response from /models.
type ModelList struct {
	Object string  `json:"object,omitempty"`
	Data   []Model `json:"data"`
}
