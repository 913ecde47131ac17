package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/sudo-sidd/classroom-downloader/internal/data/repos/testutil"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGeminiClientUnavailableWithoutKey(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient("", testutil.Logger(t))
	if client.Available() {
		t.Fatal("empty key must report unavailable")
	}
	if _, err := client.GenerateContent(context.Background(), "hi"); err == nil {
		t.Fatal("expected error without a key")
	}
}

func TestGeminiClientModelFallbackAndPinning(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := make(map[string]int)

	g := &geminiClient{
		log:    testutil.Logger(t),
		apiKey: "test-key",
		http: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			var model string
			for _, m := range geminiModels {
				if strings.Contains(req.URL.Path, m) {
					model = m
				}
			}
			calls[model]++
			mu.Unlock()
			// The first model is unavailable for this key.
			if model == geminiModels[0] {
				return jsonResponse(`{"error": {"code": 404, "message": "model not found"}}`), nil
			}
			return jsonResponse(`{"candidates": [{"content": {"parts": [{"text": "answer"}]}}]}`), nil
		})},
	}

	// Concurrent callers share the pinned model without tripping each other.
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, err := g.GenerateContent(context.Background(), "prompt")
			if err == nil && text != "answer" {
				err = fmt.Errorf("unexpected response text %q", text)
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("GenerateContent: %v", err)
		}
	}

	g.mu.Lock()
	pinned := g.model
	g.mu.Unlock()
	if pinned != geminiModels[1] {
		t.Fatalf("pinned model = %q, want %q", pinned, geminiModels[1])
	}

	// Once pinned, later calls skip the failing model entirely.
	mu.Lock()
	failing := calls[geminiModels[0]]
	mu.Unlock()
	if _, err := g.GenerateContent(context.Background(), "again"); err != nil {
		t.Fatalf("GenerateContent after pin: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls[geminiModels[0]] != failing {
		t.Fatal("pinned client must not retry the failing model")
	}
}
