package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Blookin/internal/config"
)

func TestSynthesize(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client := NewClient(config.SpeechConfig{Endpoint: srv.URL, APIKey: "k"})

	audio, err := client.Synthesize(context.Background(), "narration text", "ko")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("unexpected audio %q", audio)
	}
	if payload["text"] != "narration text" || payload["language"] != "ko" {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(config.SpeechConfig{Endpoint: srv.URL})

	if _, err := client.Synthesize(context.Background(), "t", "ko"); err == nil {
		t.Error("expected an error")
	}
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewClient(config.SpeechConfig{Endpoint: srv.URL})

	if _, err := client.Synthesize(context.Background(), "t", "ko"); err == nil {
		t.Error("expected an error for an empty body")
	}
}

func TestSynthesizeMisconfigured(t *testing.T) {
	if _, err := NewClient(config.SpeechConfig{}).Synthesize(context.Background(), "t", "ko"); err == nil {
		t.Error("expected an error without an endpoint")
	}
}
