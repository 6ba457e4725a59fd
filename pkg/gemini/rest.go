package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

type restClient struct {
	endpoint string
	http     *fiber.Client
	log      *logrus.Logger
}

// NewRESTClient talks to the generateContent endpoint directly, one POST per
// prompt, without the SDK.
func NewRESTClient(cfg Config, log *logrus.Logger) (IGemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s",
		base, url.PathEscape(cfg.ModelName), url.Values{"key": {cfg.APIKey}}.Encode())

	return &restClient{
		endpoint: endpoint,
		http: &fiber.Client{
			JSONEncoder: jsoniter.Marshal,
			JSONDecoder: jsoniter.Unmarshal,
		},
		log: log,
	}, nil
}

type restResult struct {
	text string
	err  error
}

func (c *restClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	done := make(chan restResult, 1)

	go func() {
		text, err := c.call(ctx, prompt)
		done <- restResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

func (c *restClient) call(ctx context.Context, prompt string) (string, error) {
	timeout, err := requestTimeout(ctx)
	if err != nil {
		return "", err
	}

	agent := c.http.Post(c.endpoint)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	agent.JSON(GenerateRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("gemini request failed: %w", errors.Join(errs...))
	}

	var res GenerateResponse
	if err := jsoniter.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("gemini response is not JSON (status %d): %w", code, err)
	}

	// An error body from upstream is still JSON; it simply carries no candidate.
	if code >= fiber.StatusBadRequest && c.log != nil {
		c.log.WithFields(logrus.Fields{
			"status": code,
		}).Warn("Gemini answered with an error status")
	}

	text, ok := res.FirstText()
	if !ok {
		return "", ErrNoCandidate
	}

	return text, nil
}

func (c *restClient) Close() error {
	return nil
}

// requestTimeout bounds the request by ctx's deadline so an abandoned call
// does not hold its connection forever. Zero means no deadline was set.
func requestTimeout(ctx context.Context) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, nil
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, context.DeadlineExceeded
	}
	return remaining, nil
}
