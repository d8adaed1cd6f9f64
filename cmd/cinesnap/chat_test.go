package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkostanimirovic/cinesnap"
	"github.com/darkostanimirovic/cinesnap/catalog"
	"github.com/darkostanimirovic/cinesnap/internal/testutil"
)

func newChatAssistant(t *testing.T, llm *cinesnap.MockLLM) *cinesnap.Assistant {
	t.Helper()
	cat := &testutil.Catalog{
		ListFunc: func(context.Context, catalog.Category, int) (*catalog.Page, error) {
			return testutil.PageOf(testutil.Movies(1, 2)), nil
		},
	}
	a, err := cinesnap.New(cinesnap.Config{Provider: llm, Catalog: cat, Logging: cinesnap.LoggingConfig{}.Silent()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestChatLoop(t *testing.T) {
	llm := cinesnap.NewMockLLM().
		WithToolCall("getPopularMovies", map[string]any{}).
		WithFinalResponse("Two favourites for tonight.")
	a := newChatAssistant(t, llm)

	in := strings.NewReader("Surprise me!\n/history\n/reset\n/history\n/quit\nnever read\n")
	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), a, in, &out))

	text := out.String()
	assert.Contains(t, text, "Two favourites for tonight.")
	assert.Contains(t, text, "* Movie 1 (2021) 7.5/10")
	assert.Contains(t, text, "[user] Surprise me!")
	assert.Contains(t, text, "Starting over.")
	assert.Equal(t, 2, llm.CallCount())
	assert.Empty(t, a.History())
}

func TestChatLoop_EOF(t *testing.T) {
	a := newChatAssistant(t, cinesnap.NewMockLLM())
	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), a, strings.NewReader("\n/context\n"), &out))
	assert.Contains(t, out.String(), "Nothing yet.")
}
