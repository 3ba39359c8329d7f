package groq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guttosm/mandipulse/internal/upstream"
)

func TestComplete_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	c := NewClient(Config{APIURL: srv.URL})
	_, err := c.Complete(context.Background(), ChatRequest{Model: DefaultModel})
	var missing *upstream.MissingCredentialError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCredentialError, got %v", err)
	}
	if called {
		t.Fatalf("no request should reach the server")
	}
}

func TestComplete_SendsRequestAndParsesReply(t *testing.T) {
	var got ChatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		var raw map[string]any
		_ = json.Unmarshal(body, &raw)
		got.Model, _ = raw["model"].(string)
		got.Temperature, _ = raw["temperature"].(float64)
		if msgs, ok := raw["messages"].([]any); ok {
			got.Messages = make([]Message, len(msgs))
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Sow in early November.  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "gk", APIURL: srv.URL})
	text, err := c.Complete(context.Background(), ChatRequest{
		Model:       DefaultModel,
		Temperature: 0.4,
		Messages:    []Message{TextMessage("system", "sys"), TextMessage("user", "hi")},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Sow in early November." {
		t.Fatalf("unexpected text %q", text)
	}
	if auth != "Bearer gk" || got.Model != DefaultModel || got.Temperature != 0.4 || len(got.Messages) != 2 {
		t.Fatalf("unexpected request auth=%q req=%+v", auth, got)
	}
}

func TestComplete_ImageMessageShape(t *testing.T) {
	msg := ImageMessage("what is this?", "https://example.com/leaf.jpg")
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"role":"user","content":[{"type":"text","text":"what is this?"},{"type":"image_url","image_url":{"url":"https://example.com/leaf.jpg"}}]}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestComplete_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"rate limited", 429, `{"error":{"message":"slow down"}}`, `{"error":{"message":"slow down"}}`},
		{"malformed", 200, `not json`, upstream.MalformedBody},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{APIKey: "k", APIURL: srv.URL}).Complete(context.Background(), ChatRequest{})
			var upErr *upstream.Error
			if !errors.As(err, &upErr) || upErr.Status != tc.status || upErr.Body != tc.want {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	text, err := NewClient(Config{APIKey: "k", APIURL: srv.URL}).Complete(context.Background(), ChatRequest{})
	if err != nil || text != "" {
		t.Fatalf("want empty text, got %q err=%v", text, err)
	}
}

func TestContentText(t *testing.T) {
	parts := []any{map[string]any{"type": "text", "text": "a"}, map[string]any{"type": "text", "text": "b"}, "x"}
	if s := contentText(parts); s != "ab" {
		t.Fatalf("got %q", s)
	}
	if s := contentText(nil); s != "" {
		t.Fatalf("got %q", s)
	}
}
