package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
)

func newRelay(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClient_Chat(t *testing.T) {
	var got chatRequest
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = jsoniter.Unmarshal(raw, &got)
		_, _ = io.WriteString(w, `{"reply":"**Hi**"}`)
	})

	reply, err := client.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "**Hi**" {
		t.Errorf("Chat() = %q", reply)
	}
	if got.Prompt != "hello" {
		t.Errorf("relay saw prompt %q", got.Prompt)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Gemini API error"}`)
	})

	_, err := client.Chat(context.Background(), "hello")
	if !errors.Is(err, ErrRelayStatus) {
		t.Fatalf("Chat() error = %v, want ErrRelayStatus", err)
	}
}

func TestClient_MissingReply(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	if _, err := client.Chat(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for a response without reply")
	}
}

func TestClient_NotJSON(t *testing.T) {
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html></html>`)
	})

	if _, err := client.Chat(context.Background(), "hello"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"reply":"late"}`)
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, "hello")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Chat() error = %v, want deadline exceeded", err)
	}
}

func TestClient_RequestStopsAtDeadline(t *testing.T) {
	release := make(chan struct{})
	client := newRelay(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := client.post(ctx, "hello"); err == nil {
		t.Fatal("expected the request to time out")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("request outlived its deadline by %v", elapsed)
	}
}

func TestRequestTimeout(t *testing.T) {
	if d, err := requestTimeout(context.Background()); d != 0 || err != nil {
		t.Errorf("no deadline: got %v, %v", d, err)
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if _, err := requestTimeout(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expired deadline: err = %v", err)
	}
}
