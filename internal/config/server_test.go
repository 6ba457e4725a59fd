package config

import (
	"VoiceAssistant/pkg/gemini"
	"VoiceAssistant/pkg/log"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type fakeGemini struct {
	mu           sync.Mutex
	prompts      []string
	generateFunc func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.generateFunc(ctx, prompt)
}

func (f *fakeGemini) Close() error { return nil }

func setupTestApp(t *testing.T, fake *fakeGemini) *fiber.App {
	t.Helper()

	logger := log.NewDiscardLogger()
	server, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithEnv(&Env{AppPort: "0", CORSAllowOrigins: "*"}),
		WithMiddleware(),
		WithGemini(fake),
	)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	server.RegisterHandler()

	return server.App()
}

func postChat(t *testing.T, app *fiber.App, contentType, body string) (int, map[string]string, http.Header) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("Failed to decode response %q: %v", raw, err)
	}

	return resp.StatusCode, result, resp.Header
}

func TestChat_ReturnsReply(t *testing.T) {
	fake := &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "Hello from Gemini", nil
	}}
	app := setupTestApp(t, fake)

	status, body, _ := postChat(t, app, "application/json", `{"prompt":"hi there"}`)

	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if body["reply"] != "Hello from Gemini" {
		t.Errorf("Expected reply 'Hello from Gemini', got %q", body["reply"])
	}
	if len(fake.prompts) != 1 || fake.prompts[0] != "hi there" {
		t.Errorf("Expected one upstream call with the prompt, got %v", fake.prompts)
	}
}

func TestChat_FallbackReply(t *testing.T) {
	cases := map[string]func(ctx context.Context, prompt string) (string, error){
		"no candidate": func(ctx context.Context, prompt string) (string, error) {
			return "", gemini.ErrNoCandidate
		},
		"empty text": func(ctx context.Context, prompt string) (string, error) {
			return "", nil
		},
	}

	for name, fn := range cases {
		fn := fn
		t.Run(name, func(t *testing.T) {
			app := setupTestApp(t, &fakeGemini{generateFunc: fn})

			status, body, _ := postChat(t, app, "application/json", `{"prompt":"x"}`)

			if status != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", status)
			}
			if body["reply"] != "No response" {
				t.Errorf("Expected fallback reply, got %q", body["reply"])
			}
		})
	}
}

func TestChat_UpstreamFailure(t *testing.T) {
	fake := &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("dial tcp: secret-host refused")
	}}
	app := setupTestApp(t, fake)

	status, body, _ := postChat(t, app, "application/json", `{"prompt":"x"}`)

	if status != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", status)
	}
	if len(body) != 1 || body["error"] != "Gemini API error" {
		t.Errorf("Expected fixed error payload, got %v", body)
	}
}

func TestChat_PromptForwardedAsIs(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{name: "missing prompt", contentType: "application/json", body: `{}`, want: ""},
		{name: "empty prompt", contentType: "application/json", body: `{"prompt":""}`, want: ""},
		{name: "null prompt", contentType: "application/json", body: `{"prompt":null}`, want: ""},
		{name: "escaped prompt", contentType: "application/json", body: `{"prompt":"say \"hi\"\n"}`, want: "say \"hi\"\n"},
		{name: "whitespace prompt", contentType: "application/json", body: `{"prompt":"   "}`, want: "   "},
		{name: "charset parameter", contentType: "application/json; charset=utf-8", body: `{"prompt":"a"}`, want: "a"},
		{name: "body not declared json", contentType: "text/plain", body: `{"prompt":"ignored"}`, want: ""},
		{name: "no body", contentType: "", body: "", want: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
				return "ok", nil
			}}
			app := setupTestApp(t, fake)

			status, _, _ := postChat(t, app, tc.contentType, tc.body)

			if status != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", status)
			}
			if len(fake.prompts) != 1 || fake.prompts[0] != tc.want {
				t.Errorf("Expected upstream prompt %q, got %v", tc.want, fake.prompts)
			}
		})
	}
}

func TestChat_MalformedJSON(t *testing.T) {
	fake := &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	}}
	app := setupTestApp(t, fake)

	status, body, _ := postChat(t, app, "application/json", `{"prompt":`)

	if status != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", status)
	}
	if body["error"] != "invalid request body" {
		t.Errorf("Unexpected error payload %v", body)
	}
	if len(fake.prompts) != 0 {
		t.Errorf("Expected no upstream call, got %v", fake.prompts)
	}
}

func TestChat_CORSAndRequestID(t *testing.T) {
	app := setupTestApp(t, &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"prompt":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("X-Request-ID", "req-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected any origin to be allowed, got %q", got)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "req-42" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}
}

func TestChat_GeneratesRequestID(t *testing.T) {
	app := setupTestApp(t, &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	}})

	_, _, header := postChat(t, app, "application/json", `{"prompt":"x"}`)

	if id := header.Get("X-Request-ID"); len(id) != 26 {
		t.Errorf("Expected a ULID request id, got %q", id)
	}
}

func TestChat_Preflight(t *testing.T) {
	app := setupTestApp(t, &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	}})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupTestApp(t, &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "ok", nil
	}})

	postChat(t, app, "application/json", `{"prompt":"x"}`)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected health status 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `relay_chat_requests_total{outcome="ok"} 1`) {
		t.Errorf("Expected chat counter in metrics output, got:\n%s", raw)
	}
}

func TestNewServer_RequiresGemini(t *testing.T) {
	logger := log.NewDiscardLogger()
	_, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithEnv(&Env{AppPort: "0"}),
	)
	if err == nil {
		t.Fatal("Expected error without a gemini client")
	}
}

func TestNewServer_BuildsRESTClient(t *testing.T) {
	logger := log.NewDiscardLogger()
	server, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithEnv(&Env{
			AppPort:          "0",
			GeminiAPIKey:     "test-key",
			GeminiModelName:  "gemini-2.0-flash",
			GeminiTransport:  TransportREST,
			GeminiBaseURL:    "http://127.0.0.1:1",
			BreakerEnabled:   true,
			CORSAllowOrigins: "*",
		}),
		WithGeminiClient(context.Background()),
	)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if server.geminiClient == nil {
		t.Fatal("Expected a gemini client")
	}
	if err := server.geminiClient.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestChat_NonStringPromptFallsBack(t *testing.T) {
	for _, body := range []string{`{"prompt":123}`, `{"prompt":true}`, `{"prompt":{"text":"hi"}}`, `{"prompt":["hi"]}`} {
		fake := &fakeGemini{generateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "ok", nil
		}}
		app := setupTestApp(t, fake)

		status, resp, _ := postChat(t, app, "application/json", body)

		if status != http.StatusOK {
			t.Fatalf("%s: Expected status 200, got %d", body, status)
		}
		if resp["reply"] != "No response" {
			t.Errorf("%s: Expected fallback reply, got %v", body, resp)
		}
		if len(fake.prompts) != 0 {
			t.Errorf("%s: Expected no upstream call, got %v", body, fake.prompts)
		}
	}
}

func TestChat_SDKBlockedPromptFallsBack(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer upstream.Close()

	logger := log.NewDiscardLogger()
	server, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithEnv(&Env{
			AppPort:          "0",
			GeminiAPIKey:     "test-key",
			GeminiModelName:  "gemini-2.0-flash",
			GeminiTransport:  TransportSDK,
			GeminiBaseURL:    upstream.URL,
			CORSAllowOrigins: "*",
		}),
		WithGeminiClient(context.Background()),
	)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer server.geminiClient.Close()
	server.RegisterHandler()

	status, body, _ := postChat(t, server.App(), "application/json", `{"prompt":"something unsafe"}`)

	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%v)", status, body)
	}
	if body["reply"] != "No response" {
		t.Errorf("Expected fallback reply, got %v", body)
	}
}
