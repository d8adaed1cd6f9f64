package cinesnap

import (
	"strings"
	"testing"

	"github.com/darkostanimirovic/cinesnap/providers"
)

func TestBuildSystemPrompt_NoContext(t *testing.T) {
	prompt := buildSystemPrompt(UserContext{})
	if !strings.Contains(prompt, noContextLine) {
		t.Errorf("expected %q in prompt", noContextLine)
	}
}

func TestBuildSystemPrompt_EmbedsContext(t *testing.T) {
	prompt := buildSystemPrompt(UserContext{Mood: Ptr("happy"), PreferredGenres: []string{"Comedy"}})
	if !strings.Contains(prompt, "mood: happy\npreferredGenres: Comedy") {
		t.Errorf("expected context lines in prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, noContextLine) {
		t.Error("did not expect the no-context line")
	}
}

func TestHistoryMessages(t *testing.T) {
	msgs := historyMessages([]Turn{
		newTurn(RoleUser, "hi"),
		newTurn(RoleAssistant, "hello"),
	})
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != providers.RoleUser || msgs[1].Role != providers.RoleAssistant {
		t.Errorf("unexpected roles %s, %s", msgs[0].Role, msgs[1].Role)
	}
}

func TestFollowUpMessages(t *testing.T) {
	history := []providers.Message{{Role: providers.RoleUser, Content: "Surprise me!"}}
	first := &providers.CompletionResponse{
		ToolCalls: []providers.ToolCall{{ID: "call_0", Name: "getPopularMovies", Arguments: map[string]any{}}},
	}
	results := []ToolResult{{CallID: "call_0", Name: "getPopularMovies", Payload: errorPayload{Error: "catalog request failed"}}}

	msgs := followUpMessages(history, first, results)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if len(msgs[1].ToolCalls) != 1 || msgs[1].Role != providers.RoleAssistant {
		t.Errorf("expected assistant tool-call message, got %+v", msgs[1])
	}
	tool := msgs[2]
	if tool.Role != providers.RoleTool || tool.ToolCallID != "call_0" || tool.Name != "getPopularMovies" {
		t.Errorf("unexpected tool message %+v", tool)
	}
	if tool.Content != `{"error":"catalog request failed"}` {
		t.Errorf("unexpected tool payload %s", tool.Content)
	}
	if msgs[3].Role != providers.RoleUser || msgs[3].Content != finalAnswerInstruction {
		t.Errorf("expected final instruction, got %+v", msgs[3])
	}
}
