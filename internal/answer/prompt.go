package answer

import (
	"github.com/kalambet/folio/internal/proxy"
)

// maxHistoryTurns is how many prior turns are forwarded to the model.
const maxHistoryTurns = 8

const systemInstructions = "You are a portfolio assistant. Answer ONLY using the provided portfolio context.\n" +
	"Rules:\n" +
	"1) If the answer is not in context, say: 'I do not have that information in this portfolio.'\n" +
	"2) Be concise, professional, and accurate.\n" +
	"3) Do not invent metrics, employers, education, or skills.\n" +
	"4) If asked for contact, provide the listed email.\n\n" +
	"Portfolio Context:\n"

// Turn is one prior message of the conversation supplied by the client.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemPrompt returns the grounding instruction with contextBlob appended.
func SystemPrompt(contextBlob string) string {
	return systemInstructions + contextBlob
}

// BuildMessages assembles the model conversation: the system prompt, at most
// the last eight history turns in their original order, then the user message.
func BuildMessages(message string, history []Turn, contextBlob string) []proxy.Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	msgs := make([]proxy.Message, 0, len(history)+2)
	msgs = append(msgs, proxy.Message{Role: "system", Content: SystemPrompt(contextBlob)})
	for _, t := range history {
		msgs = append(msgs, proxy.Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, proxy.Message{Role: "user", Content: message})
	return msgs
}
