package audiopipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Transcriber converts one audio segment file into text. Implementations
// must honor ctx cancellation.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// HTTPTranscriber posts each segment as multipart form data to a
// configured OpenAI-Whisper-compatible endpoint, structurally identical
// to the Firecrawl/Jina remote clients in the URL engine cascade:
// env-gated credential, net/http.Client, JSON response decode.
type HTTPTranscriber struct {
	Endpoint string
	APIKey   string
	Model    string
	Client   *http.Client
}

// NewHTTPTranscriber builds a transcriber pointed at endpoint (default
// OpenAI's /v1/audio/transcriptions when empty) using model and apiKey.
func NewHTTPTranscriber(endpoint, apiKey, model string) *HTTPTranscriber {
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/audio/transcriptions"
	}
	if model == "" {
		model = "whisper-1"
	}
	return &HTTPTranscriber{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    model,
		Client:   &http.Client{Timeout: 120 * time.Second},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open segment: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy segment into request: %w", err)
	}
	_ = writer.WriteField("model", t.Model)
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.APIKey)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &transcribeStatusErr{status: resp.StatusCode, body: string(data)}
	}

	var out transcriptionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	return out.Text, nil
}

type transcribeStatusErr struct {
	status int
	body   string
}

func (e *transcribeStatusErr) Error() string {
	return fmt.Sprintf("transcription backend returned %d: %s", e.status, e.body)
}
