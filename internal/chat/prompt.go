package chat

import (
	"fmt"
	"strings"

	"github.com/clearpathhq/beacon/internal/llm"
	"github.com/clearpathhq/beacon/internal/retrieve"
)

// systemPrompt pins the model to the retrieved documentation. The explicit
// fallback sentence is load-bearing: the evaluator's refusal check matches
// it, which is how ungrounded answers surface as low confidence.
const systemPrompt = `You are a Clearpath customer support assistant.
Answer ONLY using the provided context from Clearpath documentation.
If the answer is not in the context, say:
"I don't have enough information from the documentation to answer that."
Do NOT make up information. Do NOT hallucinate.
Be helpful, clear, and concise. Format your answers with proper structure when appropriate.`

// buildPrompt assembles the system prompt, prior conversation turns, and
// the current query with its retrieved context.
func buildPrompt(query string, context []retrieve.Result, history []llm.Message) *llm.Prompt {
	messages := append([]llm.Message(nil), history...)
	messages = append(messages, llm.Message{
		Role: llm.RoleUser,
		Content: fmt.Sprintf("Context from Clearpath documentation:\n---\n%s\n---\n\nUser question: %s",
			renderContext(context), query),
	})
	return &llm.Prompt{SystemPrompt: systemPrompt, Messages: messages}
}

// renderContext formats each retrieved chunk with its provenance so the
// model can cite sources.
func renderContext(context []retrieve.Result) string {
	if len(context) == 0 {
		return "No relevant documentation found."
	}
	parts := make([]string, len(context))
	for i, r := range context {
		parts[i] = fmt.Sprintf("[Source: %s, Chunk #%d, Similarity: %.4f]\n%s",
			r.Chunk.DocumentName, r.Chunk.ID, r.Score, r.Chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}
