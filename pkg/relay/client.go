package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

var ErrRelayStatus = errors.New("relay answered with an error status")

const chatPath = "/api/chat"

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Reply *string `json:"reply"`
	Error string  `json:"error"`
}

// Client calls the relay's chat endpoint.
type Client struct {
	url  string
	http *fiber.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		url: baseURL + chatPath,
		http: &fiber.Client{
			JSONEncoder: jsoniter.Marshal,
			JSONDecoder: jsoniter.Unmarshal,
		},
	}
}

type result struct {
	reply string
	err   error
}

// Chat posts prompt and returns the reply. There is no timeout: the call ends
// when the relay answers or ctx is cancelled.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	done := make(chan result, 1)

	go func() {
		reply, err := c.post(ctx, prompt)
		done <- result{reply: reply, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.reply, res.err
	}
}

func (c *Client) post(ctx context.Context, prompt string) (string, error) {
	timeout, err := requestTimeout(ctx)
	if err != nil {
		return "", err
	}

	agent := c.http.Post(c.url)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	agent.JSON(chatRequest{Prompt: prompt})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("relay request failed: %w", errors.Join(errs...))
	}

	var res chatResponse
	if err := jsoniter.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("relay response is not JSON (status %d): %w", code, err)
	}

	if code != fiber.StatusOK {
		return "", fmt.Errorf("%w: %d %s", ErrRelayStatus, code, res.Error)
	}
	if res.Reply == nil {
		return "", fmt.Errorf("relay response has no reply field")
	}

	return *res.Reply, nil
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
