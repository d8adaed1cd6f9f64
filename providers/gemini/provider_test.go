package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/darkostanimirovic/cinesnap/providers"
)

func TestConvertMessages(t *testing.T) {
	contents := convertMessages([]providers.Message{
		{Role: providers.RoleUser, Content: "horror please"},
		{Role: providers.RoleAssistant, ToolCalls: []providers.ToolCall{{ID: "c1", Name: "getMoviesByGenre", Arguments: map[string]any{"genreId": "27"}}}},
		{Role: providers.RoleTool, Content: `{"results":[]}`, ToolCallID: "c1", Name: "getMoviesByGenre"},
		{Role: providers.RoleAssistant},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "getMoviesByGenre", contents[1].Parts[0].FunctionCall.Name)

	fr := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "getMoviesByGenre", fr.Name)
	assert.Equal(t, `{"results":[]}`, fr.Response["result"])
}

func TestConvertMessages_GroupsParallelToolResults(t *testing.T) {
	contents := convertMessages([]providers.Message{
		{Role: providers.RoleUser, Content: "something popular or top rated"},
		{Role: providers.RoleAssistant, ToolCalls: []providers.ToolCall{
			{ID: "c1", Name: "getPopularMovies", Arguments: map[string]any{}},
			{ID: "c2", Name: "getTopRatedMovies", Arguments: map[string]any{}},
		}},
		{Role: providers.RoleTool, Content: `{"results":[1]}`, ToolCallID: "c1", Name: "getPopularMovies"},
		{Role: providers.RoleTool, Content: `{"results":[2]}`, ToolCallID: "c2", Name: "getTopRatedMovies"},
		{Role: providers.RoleUser, Content: "thanks"},
	})

	require.Len(t, contents, 4)
	assert.Len(t, contents[1].Parts, 2)

	responses := contents[2]
	assert.Equal(t, string(genai.RoleUser), responses.Role)
	require.Len(t, responses.Parts, 2)
	assert.Equal(t, "getPopularMovies", responses.Parts[0].FunctionResponse.Name)
	assert.Equal(t, "c2", responses.Parts[1].FunctionResponse.ID)

	assert.Nil(t, contents[3].Parts[0].FunctionResponse)
	assert.Equal(t, "thanks", contents[3].Parts[0].Text)
}

func TestConvertSchema(t *testing.T) {
	schema := convertSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"genreId": map[string]any{"type": "string", "description": "Genre id"},
			"sortBy":  map[string]any{"type": "string", "enum": []string{"popularity.desc", "vote_average.desc"}},
			"page":    map[string]any{"type": "integer"},
		},
		"required": []string{"genreId"},
	})

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"genreId"}, schema.Required)
	assert.Equal(t, genai.TypeInteger, schema.Properties["page"].Type)
	assert.Equal(t, []string{"popularity.desc", "vote_average.desc"}, schema.Properties["sortBy"].Enum)
	assert.Nil(t, convertSchema(nil))
}

func TestBuildConfig(t *testing.T) {
	cfg := buildConfig(providers.CompletionRequest{
		SystemPrompt: "You are CineSnap",
		Temperature:  0.7,
		TopP:         0.8,
		MaxTokens:    2048,
		Tools:        []providers.ToolDefinition{{Name: "getGenres", Parameters: map[string]any{"type": "object"}}},
	})

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, float32(0.7), *cfg.Temperature)
	assert.Equal(t, int32(2048), cfg.MaxOutputTokens)
	require.Len(t, cfg.Tools, 1)
	assert.Equal(t, "getGenres", cfg.Tools[0].FunctionDeclarations[0].Name)

	assert.Nil(t, buildConfig(providers.CompletionRequest{}).Tools)
}

func TestConvertResponse(t *testing.T) {
	p := &Provider{}
	resp := p.convertResponse("gemini-2.0-flash", &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "Let me look."},
				{FunctionCall: &genai.FunctionCall{Name: "getPopularMovies"}},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 3, CandidatesTokenCount: 4, TotalTokenCount: 7},
	})

	assert.Equal(t, "Let me look.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.NotNil(t, resp.ToolCalls[0].Arguments)
	assert.Equal(t, providers.FinishReasonToolCalls, resp.FinishReason)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestClassifyError(t *testing.T) {
	err := classifyError(genai.APIError{Code: 429, Message: "quota"})
	assert.ErrorIs(t, err, providers.ErrRateLimited)

	err = classifyError(genai.APIError{Code: 400, Message: "bad"})
	assert.NotErrorIs(t, err, providers.ErrServerError)
}
