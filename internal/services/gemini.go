package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sudo-sidd/classroom-downloader/internal/platform/logger"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// geminiModels are tried in order; generation falls back through the rest
// when a model is unavailable for the key.
var geminiModels = []string{
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemini-flash-latest",
}

// GeminiClient generates text completions. Faked in tests.
type GeminiClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Available() bool
}

type geminiClient struct {
	log    *logger.Logger
	apiKey string
	http   *http.Client

	mu    sync.Mutex
	model string // pinned after the first successful call
}

// NewGeminiClient builds the REST client. An empty key yields a client that
// reports unavailable; callers degrade instead of failing startup.
func NewGeminiClient(apiKey string, baseLog *logger.Logger) GeminiClient {
	return &geminiClient{
		log:    baseLog.With("component", "gemini"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *geminiClient) Available() bool { return g.apiKey != "" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Config   *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenCfg struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *geminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if !g.Available() {
		return "", fmt.Errorf("gemini api key not configured")
	}

	models := geminiModels
	g.mu.Lock()
	if g.model != "" {
		models = []string{g.model}
	}
	g.mu.Unlock()

	var lastErr error
	for _, model := range models {
		text, err := g.generate(ctx, model, prompt)
		if err != nil {
			lastErr = err
			g.log.Warn("gemini model failed", "model", model, "error", err)
			continue
		}
		// Pin the first model that answers.
		g.mu.Lock()
		g.model = model
		g.mu.Unlock()
		return text, nil
	}
	return "", lastErr
}

func (g *geminiClient) generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Config: &geminiGenCfg{
			Temperature:     0.1,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 1024,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf(geminiEndpoint, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
