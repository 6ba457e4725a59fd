package chat

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// FallbackReply is answered when upstream returned no candidate text.
const FallbackReply = "No response"

// RawChatRequest keeps the prompt undecoded so a prompt that is not a string
// does not fail the whole body.
type RawChatRequest struct {
	Prompt jsoniter.RawMessage `json:"prompt"`
}

// Decode returns the prompt as text. A missing or null prompt is "". ok is
// false when the prompt is some other JSON value.
func (r RawChatRequest) Decode() (req ChatRequest, ok bool) {
	raw := bytes.TrimSpace(r.Prompt)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ChatRequest{}, true
	}
	if raw[0] != '"' {
		return ChatRequest{}, false
	}
	if err := jsoniter.Unmarshal(raw, &req.Prompt); err != nil {
		return ChatRequest{}, false
	}
	return req, true
}
