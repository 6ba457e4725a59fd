package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoCandidate is returned when the upstream answered but the path
// candidates[0].content.parts[0].text is absent.
var ErrNoCandidate = errors.New("gemini: response has no candidate text")

type IGemini interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}

type Config struct {
	APIKey    string
	ModelName string
	BaseURL   string
}

type geminiClient struct {
	modelName string
	client    *genai.Client
}

// NewGeminiClient builds the SDK-backed client.
func NewGeminiClient(ctx context.Context, cfg Config) (IGemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: cfg.ModelName,
		client:    client,
	}, nil
}

// GenerateText sends prompt as the only part of a single-turn request.
func (g *geminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return blockedText(err)
	}

	return firstText(res)
}

// emptyResponse is the message the SDK uses for a response body it decoded to
// nothing.
const emptyResponse = "empty response from model"

// blockedText treats the SDK's safety errors as answers. A blocked prompt has
// no candidate; a blocked candidate still carries whatever text it produced.
func blockedText(err error) (string, error) {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		if blocked.Candidate != nil {
			return candidateText(blocked.Candidate)
		}
		return "", fmt.Errorf("%w: %v", ErrNoCandidate, err)
	}

	if strings.Contains(err.Error(), emptyResponse) {
		return "", fmt.Errorf("%w: %v", ErrNoCandidate, err)
	}

	return "", err
}

func firstText(res *genai.GenerateContentResponse) (string, error) {
	if res == nil || len(res.Candidates) == 0 {
		return "", ErrNoCandidate
	}

	return candidateText(res.Candidates[0])
}

func candidateText(candidate *genai.Candidate) (string, error) {
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrNoCandidate
	}

	text, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return "", ErrNoCandidate
	}

	return string(text), nil
}

func (g *geminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
