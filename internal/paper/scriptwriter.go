package paper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"strollcast/internal/services"
)

//go:embed prompt_template.md
var promptTemplate string

// BuildPrompt fills the dialogue prompt with the paper's metadata and body.
func BuildPrompt(meta Metadata, paperContent string) string {
	prompt := promptTemplate
	prompt = strings.ReplaceAll(prompt, "{{PAPER_TITLE}}", meta.Title)
	prompt = strings.ReplaceAll(prompt, "{{AUTHORS}}", strings.Join(meta.Authors, ", "))
	prompt = strings.ReplaceAll(prompt, "{{ABSTRACT}}", meta.Abstract)
	prompt = strings.ReplaceAll(prompt, "{{PAPER_CONTENT}}", paperContent)
	return prompt
}

// WriterConfig captures the settings for the script-writing model behind an
// OpenAI-compatible chat completions endpoint (OpenRouter).
type WriterConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// ScriptWriter asks a language model to write the episode script.
type ScriptWriter struct {
	cfg        WriterConfig
	httpClient *http.Client
	sleeper    func(time.Duration)
}

// WriterOption customizes the writer.
type WriterOption func(*ScriptWriter)

// WithWriterHTTPClient overrides the default HTTP client.
func WithWriterHTTPClient(client *http.Client) WriterOption {
	return func(w *ScriptWriter) {
		if client != nil {
			w.httpClient = client
		}
	}
}

// WithWriterSleeper overrides retry sleeps (for tests).
func WithWriterSleeper(sleeper func(time.Duration)) WriterOption {
	return func(w *ScriptWriter) {
		w.sleeper = sleeper
	}
}

// NewScriptWriter constructs a writer from configuration.
func NewScriptWriter(cfg WriterConfig, opts ...WriterOption) *ScriptWriter {
	timeout := 300 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	w := &ScriptWriter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		sleeper:    time.Sleep,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const writerMaxAttempts = 3

// WriteScript sends the prompt and returns the model's script text. Rate
// limits and server faults are retried a few times with a flat delay; the
// call is slow enough that exponential backoff buys nothing.
func (w *ScriptWriter) WriteScript(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(w.cfg.APIKey) == "" {
		return "", services.Wrap(services.ErrConfiguration, "scriptgen", "", "api key required", nil)
	}

	var lastErr error
	for attempt := 1; attempt <= writerMaxAttempts; attempt++ {
		script, retryable, err := w.sendOnce(ctx, prompt)
		if err == nil {
			return script, nil
		}
		lastErr = err
		if !retryable || attempt == writerMaxAttempts || ctx.Err() != nil {
			break
		}
		w.sleeper(5 * time.Second)
	}
	return "", services.Wrap(services.ErrExternalTool, "scriptgen", "chat", "script generation failed", lastErr)
}

func (w *ScriptWriter) sendOnce(ctx context.Context, prompt string) (script string, retryable bool, err error) {
	payload := chatRequest{
		Model:     w.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 8192,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", false, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", w.cfg.Referer)
	}
	if w.cfg.Title != "" {
		req.Header.Set("X-Title", w.cfg.Title)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		return "", retryable, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", false, errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", false, errors.New("empty completion")
	}
	return decoded.Choices[0].Message.Content, false, nil
}
