package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecommend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/recommend" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(Recommendation{
			ConversationID: "conv-1",
			Query:          "easy hikes",
			Recommendation: "Try the Quarry Rock trail.",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("secret"))
	rec, err := c.Recommend(context.Background(), RecommendRequest{Query: "easy hikes", Limit: 3})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.ConversationID != "conv-1" || !strings.Contains(rec.Recommendation, "Quarry Rock") {
		t.Errorf("recommendation = %+v", rec)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["query"] != "easy hikes" || gotBody["limit"] != float64(3) {
		t.Errorf("request body = %v", gotBody)
	}
	if _, ok := gotBody["stream"]; ok {
		t.Error("stream flag should be omitted for blocking requests")
	}
}

func TestRecommend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code": "retrieval_unavailable", "message": "search is down"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Recommend(context.Background(), RecommendRequest{Query: "hikes"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Code != "retrieval_unavailable" {
		t.Errorf("error = %+v", apiErr)
	}
}

func TestRecommendStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["stream"] != true {
			t.Errorf("stream flag not set: %v", body)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: meta\ndata: {\"conversation_id\": \"conv-2\"}\n\n"))
		_, _ = w.Write([]byte("event: delta\ndata: {\"text\": \"Try \"}\n\n"))
		_, _ = w.Write([]byte("event: delta\ndata: {\"text\": \"Quarry Rock.\"}\n\n"))
		_, _ = w.Write([]byte("event: done\ndata: {\"conversation_id\": \"conv-2\"}\n\n"))
	}))
	defer srv.Close()

	events, err := New(srv.URL).RecommendStream(context.Background(), RecommendRequest{Query: "easy hikes"})
	if err != nil {
		t.Fatalf("RecommendStream: %v", err)
	}

	var convID, text string
	var done bool
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("stream error: %v", ev.Err)
		}
		if ev.ConversationID != "" {
			convID = ev.ConversationID
		}
		text += ev.Text
		done = ev.Done
	}
	if convID != "conv-2" {
		t.Errorf("conversation id = %q", convID)
	}
	if text != "Try Quarry Rock." {
		t.Errorf("text = %q", text)
	}
	if !done {
		t.Error("missing done event")
	}
}

func TestRecommendStream_ErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: meta\ndata: {\"conversation_id\": \"conv-3\"}\n\n"))
		_, _ = w.Write([]byte("event: error\ndata: {\"code\": \"generation_failed\", \"message\": \"generation failed\"}\n\n"))
	}))
	defer srv.Close()

	events, err := New(srv.URL).RecommendStream(context.Background(), RecommendRequest{Query: "hikes"})
	if err != nil {
		t.Fatalf("RecommendStream: %v", err)
	}

	var streamErr error
	for ev := range events {
		if ev.Err != nil {
			streamErr = ev.Err
		}
	}
	var apiErr *APIError
	if !errors.As(streamErr, &apiErr) || apiErr.Code != "generation_failed" {
		t.Fatalf("expected generation_failed APIError, got %v", streamErr)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestHealth_Degraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := New(srv.URL).Health(context.Background()); err == nil {
		t.Fatal("expected error for degraded server")
	}
}
