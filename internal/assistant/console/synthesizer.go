// Package console implements the speech capabilities on a terminal: typed
// lines stand in for recognized speech and spoken text is written out word by
// word.
package console

import (
	"VoiceAssistant/internal/assistant"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const defaultWordDelay = 120 * time.Millisecond

// DefaultVoices is what the console offers when no list is given.
var DefaultVoices = []assistant.Voice{
	{Name: "Veena", Lang: "en-IN", Gender: "female"},
	{Name: "Rishi", Lang: "en-IN", Gender: "male"},
	{Name: "Samantha", Lang: "en-US", Gender: "female"},
	{Name: "Daniel", Lang: "en-GB", Gender: "male"},
}

type playback struct {
	utterance *assistant.Utterance
	stop      chan struct{}
	done      chan struct{}
}

type Synthesizer struct {
	out       io.Writer
	wordDelay time.Duration

	mu            sync.Mutex
	voices        []assistant.Voice
	voicesChanged func()
	current       *playback
	paused        bool
	resumed       chan struct{}
}

type SynthesizerOption func(*Synthesizer)

func WithWordDelay(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		s.wordDelay = d
	}
}

func WithVoices(voices []assistant.Voice) SynthesizerOption {
	return func(s *Synthesizer) {
		s.voices = append([]assistant.Voice(nil), voices...)
	}
}

func NewSynthesizer(out io.Writer, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		out:       out,
		wordDelay: defaultWordDelay,
		voices:    append([]assistant.Voice(nil), DefaultVoices...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synthesizer) Voices() []assistant.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]assistant.Voice(nil), s.voices...)
}

func (s *Synthesizer) OnVoicesChanged(fn func()) {
	s.mu.Lock()
	s.voicesChanged = fn
	s.mu.Unlock()
}

// SetVoices replaces the voice list and notifies the registered listener.
func (s *Synthesizer) SetVoices(voices []assistant.Voice) {
	s.mu.Lock()
	s.voices = append([]assistant.Voice(nil), voices...)
	fn := s.voicesChanged
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Speak replaces whatever is playing with u.
func (s *Synthesizer) Speak(u *assistant.Utterance) {
	s.Cancel()

	p := &playback{
		utterance: u,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	go s.play(p)
}

// Cancel stops the current utterance and returns after its OnEnd has run.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	p := s.current
	s.current = nil
	s.resumeLocked()
	s.mu.Unlock()

	if p == nil {
		return
	}
	close(p.stop)
	<-p.done
}

func (s *Synthesizer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return
	}
	s.paused = true
	s.resumed = make(chan struct{})
}

func (s *Synthesizer) Resume() {
	s.mu.Lock()
	s.resumeLocked()
	s.mu.Unlock()
}

func (s *Synthesizer) resumeLocked() {
	if !s.paused {
		return
	}
	s.paused = false
	close(s.resumed)
}

// Speaking reports whether an utterance is in progress, paused or not.
func (s *Synthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *Synthesizer) play(p *playback) {
	defer s.finish(p)

	words := strings.Fields(p.utterance.Text)
	if len(words) == 0 {
		return
	}

	if v := p.utterance.Voice; v != nil {
		fmt.Fprintf(s.out, "[%s] ", v.Name)
	}

	for i, word := range words {
		if !s.waitWhilePaused(p) {
			fmt.Fprintln(s.out)
			return
		}

		if i > 0 {
			fmt.Fprint(s.out, " ")
		}
		fmt.Fprint(s.out, word)

		select {
		case <-p.stop:
			fmt.Fprintln(s.out)
			return
		case <-time.After(s.wordDelay):
		}
	}
	fmt.Fprintln(s.out)
}

// waitWhilePaused returns false if p is cancelled while paused.
func (s *Synthesizer) waitWhilePaused(p *playback) bool {
	for {
		s.mu.Lock()
		paused, resumed := s.paused, s.resumed
		s.mu.Unlock()

		if !paused {
			select {
			case <-p.stop:
				return false
			default:
				return true
			}
		}

		select {
		case <-p.stop:
			return false
		case <-resumed:
		}
	}
}

func (s *Synthesizer) finish(p *playback) {
	s.mu.Lock()
	if s.current == p {
		s.current = nil
		s.resumeLocked()
	}
	s.mu.Unlock()

	if p.utterance.OnEnd != nil {
		p.utterance.OnEnd()
	}
	close(p.done)
}
