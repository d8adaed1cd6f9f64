package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/darkostanimirovic/cinesnap/providers"
)

func TestProvider_Name(t *testing.T) {
	if got := New().Name(); got != "mock" {
		t.Errorf("expected name mock, got %s", got)
	}
}

func TestProvider_StepsRunInOrder(t *testing.T) {
	boom := errors.New("boom")
	p := New().
		WithResponse("", []providers.ToolCall{{Name: "getGenres"}}).
		WithError(boom).
		WithFunc(func(_ context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
			return &providers.CompletionResponse{Content: req.Model}, nil
		})

	first, err := p.Complete(context.Background(), providers.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.FinishReason != providers.FinishReasonToolCalls || len(first.ToolCalls) != 1 {
		t.Errorf("unexpected first response %+v", first)
	}

	if _, err := p.Complete(context.Background(), providers.CompletionRequest{}); !errors.Is(err, boom) {
		t.Errorf("expected scripted error, got %v", err)
	}

	third, err := p.Complete(context.Background(), providers.CompletionRequest{Model: "echo"})
	if err != nil || third.Content != "echo" {
		t.Errorf("expected computed response, got %+v, %v", third, err)
	}

	if _, err := p.Complete(context.Background(), providers.CompletionRequest{}); !errors.Is(err, ErrNoResponse) {
		t.Errorf("expected ErrNoResponse, got %v", err)
	}
}

func TestProvider_RecordsRequests(t *testing.T) {
	p := New().WithResponse("a", nil).WithResponse("b", nil)
	_, _ = p.Complete(context.Background(), providers.CompletionRequest{Model: "one"})
	_, _ = p.Complete(context.Background(), providers.CompletionRequest{Model: "two"})

	if p.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", p.CallCount())
	}
	reqs := p.Requests()
	if len(reqs) != 2 || reqs[0].Model != "one" || reqs[1].Model != "two" {
		t.Errorf("unexpected requests %+v", reqs)
	}
	if p.Remaining() != 0 {
		t.Errorf("expected no remaining steps, got %d", p.Remaining())
	}
}

func TestProvider_TokenUsage(t *testing.T) {
	resp, err := New().WithResponse("hi", nil).Complete(context.Background(), providers.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 30 || resp.FinishReason != providers.FinishReasonStop {
		t.Errorf("unexpected response %+v", resp)
	}
}
