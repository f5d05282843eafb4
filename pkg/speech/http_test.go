package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestHTTPSynthesizer_ImplementsInterface(t *testing.T) {
	var _ Synthesizer = (*HTTPSynthesizer)(nil)
}

func TestSynthesize(t *testing.T) {
	audio := []byte("fake-mp3-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("expected path /v1/audio/speech, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Input != "Hello World" {
			t.Errorf("expected input 'Hello World', got %q", req.Input)
		}
		if req.Voice != "en-US-AriaNeural" {
			t.Errorf("expected voice 'en-US-AriaNeural', got %q", req.Voice)
		}

		w.Write(audio)
	}))
	defer server.Close()

	s := NewHTTPSynthesizer(server.URL, "test-key", "tts-1", 5*time.Second)
	path, err := s.Synthesize(context.Background(), "Hello World", "en-US-AriaNeural")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != string(audio) {
		t.Errorf("artifact content mismatch: %q", data)
	}
}

func TestSynthesizeUniqueArtifactNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	s := NewHTTPSynthesizer(server.URL, "", "", 5*time.Second)
	first, err := s.Synthesize(context.Background(), "a", "v")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	defer os.Remove(first)
	second, err := s.Synthesize(context.Background(), "b", "v")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	defer os.Remove(second)

	if first == second {
		t.Errorf("concurrent requests must not share artifact paths: %q", first)
	}
}

func TestSynthesizeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice not supported", http.StatusBadRequest)
	}))
	defer server.Close()

	s := NewHTTPSynthesizer(server.URL, "", "", 5*time.Second)
	if _, err := s.Synthesize(context.Background(), "text", "nope"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestIsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("expected path /v1/models, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewHTTPSynthesizer(server.URL, "", "", time.Second)
	if !s.IsAvailable() {
		t.Error("expected available")
	}

	server.Close()
	if s.IsAvailable() {
		t.Error("expected unavailable after server close")
	}
}
