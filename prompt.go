package cinesnap

import (
	"strings"

	"github.com/darkostanimirovic/cinesnap/providers"
)

const finalAnswerInstruction = "Based on the function results, provide your movie recommendations and explanation."

const noContextLine = "No specific context provided yet"

const systemPromptHeader = `You are CineSnap AI, a warm and well-read movie companion. You help people find the right film for their mood, their company and the time they have.

How to work:
1. Keep a friendly, conversational tone and keep answers short.
2. Ask a follow-up question when you do not know enough to recommend well.
3. Use the catalog tools to find real movies instead of recalling titles from memory.
4. Recommend between 3 and 6 movies when you can, with one line on why each fits.
5. Mix well-known picks with lesser-known ones.

What you know about the viewer:
`

const systemPromptFooter = `

Take the viewer's mood, viewing context and stated likes and dislikes into account. You are a friend who loves movies, not a search box.`

// buildSystemPrompt embeds the user context as key: value lines.
func buildSystemPrompt(uc UserContext) string {
	lines := uc.PromptLines()
	contextBlock := noContextLine
	if len(lines) > 0 {
		contextBlock = strings.Join(lines, "\n")
	}
	return systemPromptHeader + contextBlock + systemPromptFooter
}

// historyMessages converts the transcript into provider messages.
func historyMessages(turns []Turn) []providers.Message {
	messages := make([]providers.Message, 0, len(turns))
	for _, t := range turns {
		role := providers.RoleUser
		if t.Role == RoleAssistant {
			role = providers.RoleAssistant
		}
		messages = append(messages, providers.Message{Role: role, Content: t.Text})
	}
	return messages
}

// followUpMessages appends the tool round to the history for the final call.
func followUpMessages(history []providers.Message, first *providers.CompletionResponse, results []ToolResult) []providers.Message {
	messages := make([]providers.Message, 0, len(history)+len(results)+2)
	messages = append(messages, history...)
	messages = append(messages, providers.Message{
		Role:      providers.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	for _, r := range results {
		messages = append(messages, providers.Message{
			Role:       providers.RoleTool,
			Content:    r.PayloadJSON(),
			ToolCallID: r.CallID,
			Name:       r.Name,
		})
	}
	messages = append(messages, providers.Message{
		Role:    providers.RoleUser,
		Content: finalAnswerInstruction,
	})
	return messages
}
