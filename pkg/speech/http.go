// Package speech talks to a neural TTS server exposing the
// OpenAI-compatible /v1/audio/speech API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/minthantoo333/srttospeech/pkg/logger"
)

// HTTPSynthesizer posts synthesis requests to an OpenAI-compatible TTS
// endpoint and spools the audio into a per-request temp file.
type HTTPSynthesizer struct {
	apiBase    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type speechRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Voice  string `json:"voice"`
	Format string `json:"response_format,omitempty"`
}

// NewHTTPSynthesizer creates a TTS client. apiBase defaults to
// "http://localhost:8102"; timeout of 0 defaults to 60s.
func NewHTTPSynthesizer(apiBase, apiKey, model string, timeout time.Duration) *HTTPSynthesizer {
	if apiBase == "" {
		apiBase = "http://localhost:8102"
	}
	if model == "" {
		model = "tts-1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPSynthesizer{
		apiBase: apiBase,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize converts text to audio with voiceID, writes the result to a
// uniquely named temp file and returns its path. The caller must delete
// the file when done.
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	logger.InfoCF("speech", "Synthesizing speech", map[string]any{
		"text_length": len(text),
		"voice":       voiceID,
	})

	reqBody := speechRequest{
		Model:  s.model,
		Input:  text,
		Voice:  voiceID,
		Format: "mp3",
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	url := s.apiBase + "/v1/audio/speech"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create TTS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("TTS error (status %d): %s", resp.StatusCode, string(body))
	}

	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("speech_%s.mp3", uuid.New().String()))
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("failed to write TTS audio: %w", err)
	}

	logger.InfoCF("speech", "Speech synthesized successfully", map[string]any{
		"path":       outPath,
		"size_bytes": written,
		"voice":      voiceID,
	})

	return outPath, nil
}

// IsAvailable checks whether the TTS server is reachable.
func (s *HTTPSynthesizer) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", s.apiBase+"/v1/models", nil)
	if err != nil {
		return false
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.DebugCF("speech", "TTS health check failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
