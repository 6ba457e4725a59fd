package console

import (
	"VoiceAssistant/internal/assistant"
	"errors"
	"strings"
	"sync"
)

var (
	ErrAlreadyListening = errors.New("recognition already started")
	ErrNoSpeech         = errors.New("no-speech")
)

// Recognizer treats the next line typed while a session is open as the
// spoken transcript. Each session delivers at most one result.
type Recognizer struct {
	mu      sync.Mutex
	lang    string
	session *assistant.RecognitionEvents
}

func NewRecognizer() *Recognizer {
	return &Recognizer{}
}

func (r *Recognizer) Start(cfg assistant.RecognitionConfig, events assistant.RecognitionEvents) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return ErrAlreadyListening
	}
	r.lang = cfg.Lang
	r.session = &events
	return nil
}

func (r *Recognizer) Stop() error {
	events := r.take()
	if events != nil && events.OnEnd != nil {
		events.OnEnd()
	}
	return nil
}

// Listening reports whether a session is waiting for a line.
func (r *Recognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Lang is the locale of the last session.
func (r *Recognizer) Lang() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lang
}

// Feed hands line to the open session and closes it. It returns false when no
// session is open, in which case the line is ordinary typed input. A blank
// line ends the session with ErrNoSpeech.
func (r *Recognizer) Feed(line string) bool {
	events := r.take()
	if events == nil {
		return false
	}

	transcript := strings.TrimSpace(line)
	if transcript == "" {
		if events.OnError != nil {
			events.OnError(ErrNoSpeech)
		}
	} else if events.OnResult != nil {
		events.OnResult(transcript)
	}

	if events.OnEnd != nil {
		events.OnEnd()
	}
	return true
}

func (r *Recognizer) take() *assistant.RecognitionEvents {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.session
	r.session = nil
	return events
}
