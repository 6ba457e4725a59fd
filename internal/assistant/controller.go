// Package assistant holds the interaction state of the voice and text client
// and drives the speech capabilities it is given.
package assistant

import (
	"VoiceAssistant/pkg/markup"
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const DefaultLang = "en-IN"

// State is a copy of everything a front end renders. Only the latest turn is
// kept.
type State struct {
	Input         string
	LastUserInput string
	Reply         string
	Listening     bool
	Speaking      bool
	Voices        []Voice
	SelectedVoice *Voice
	// Replies counts the replies presented so far.
	Replies int
}

type Controller struct {
	log        *logrus.Logger
	relay      Relay
	recognizer Recognizer
	synth      Synthesizer
	lang       string

	// ctx is used for relay calls started by a recognition result.
	ctx context.Context

	mu        sync.Mutex
	state     State
	utterance uint64

	micMu   sync.Mutex
	speakMu sync.Mutex
}

type Option func(*Controller)

func WithRecognizer(r Recognizer) Option {
	return func(c *Controller) {
		c.recognizer = r
	}
}

func WithLang(lang string) Option {
	return func(c *Controller) {
		if lang != "" {
			c.lang = lang
		}
	}
}

// New builds a controller and loads the voices for its locale. The voice list
// is reloaded whenever the synthesizer reports a change.
func New(ctx context.Context, log *logrus.Logger, relay Relay, synth Synthesizer, opts ...Option) *Controller {
	c := &Controller{
		log:   log,
		relay: relay,
		synth: synth,
		lang:  DefaultLang,
		ctx:   ctx,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.LoadVoices()
	synth.OnVoicesChanged(c.LoadVoices)

	return c
}

func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.state.Input = text
	c.mu.Unlock()
}

// Send submits the typed input. Blank input is rejected without touching the
// state. The input field is cleared once the relay call returns, whatever its
// outcome.
func (c *Controller) Send(ctx context.Context) error {
	c.mu.Lock()
	input := c.state.Input
	if strings.TrimSpace(input) == "" {
		c.mu.Unlock()
		return ErrEmptyInput
	}
	c.state.LastUserInput = input
	c.mu.Unlock()

	err := c.ask(ctx, input)

	c.mu.Lock()
	c.state.Input = ""
	c.mu.Unlock()

	return err
}

// ToggleMic starts a recognition session when idle and stops the running one
// otherwise.
func (c *Controller) ToggleMic() error {
	if c.recognizer == nil {
		return ErrNoRecognizer
	}

	c.micMu.Lock()
	defer c.micMu.Unlock()

	c.mu.Lock()
	listening := c.state.Listening
	c.state.Listening = !listening
	c.mu.Unlock()

	if listening {
		if err := c.recognizer.Stop(); err != nil {
			c.log.WithField("error", err.Error()).Warn("Failed to stop speech recognition")
		}
		return nil
	}

	err := c.recognizer.Start(RecognitionConfig{
		Lang:           c.lang,
		Continuous:     false,
		InterimResults: false,
	}, RecognitionEvents{
		OnResult: c.onRecognitionResult,
		OnError:  c.onRecognitionError,
		OnEnd:    c.onRecognitionEnd,
	})
	if err != nil {
		c.setListening(false)
		c.log.WithField("error", err.Error()).Error("Failed to start speech recognition")
		return err
	}

	return nil
}

func (c *Controller) onRecognitionResult(transcript string) {
	c.mu.Lock()
	c.state.LastUserInput = transcript
	c.state.Listening = false
	c.mu.Unlock()

	// ask logs its own failures.
	_ = c.ask(c.ctx, transcript)
}

func (c *Controller) onRecognitionError(err error) {
	c.log.WithField("error", err.Error()).Error("Speech recognition error")
	c.setListening(false)
}

func (c *Controller) onRecognitionEnd() {
	c.setListening(false)
}

func (c *Controller) setListening(v bool) {
	c.mu.Lock()
	c.state.Listening = v
	c.mu.Unlock()
}

// ask sends one prompt to the relay and presents the reply. Concurrent calls
// are not ordered: whichever reply arrives last is the one shown and spoken.
func (c *Controller) ask(ctx context.Context, prompt string) error {
	reply, err := c.relay.Chat(ctx, prompt)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Error fetching reply")
		return err
	}

	c.present(reply)
	return nil
}

func (c *Controller) present(reply string) {
	html := markup.ToHTML(reply)
	speech := markup.ToSpeech(reply)

	c.speakMu.Lock()
	defer c.speakMu.Unlock()

	c.mu.Lock()
	c.state.Reply = html
	c.state.Replies++
	c.state.Speaking = true
	c.utterance++
	id := c.utterance
	var voice *Voice
	if c.state.SelectedVoice != nil {
		v := *c.state.SelectedVoice
		voice = &v
	}
	c.mu.Unlock()

	c.synth.Cancel()
	c.synth.Speak(&Utterance{
		Text:  speech,
		Voice: voice,
		OnEnd: func() { c.onUtteranceEnd(id) },
	})
}

// onUtteranceEnd ignores utterances that a newer reply already replaced.
func (c *Controller) onUtteranceEnd(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == c.utterance {
		c.state.Speaking = false
	}
}

// TogglePause pauses speech that is playing and resumes speech that was
// paused. It does nothing unless the synthesizer has an utterance.
func (c *Controller) TogglePause() error {
	if !c.synth.Speaking() {
		return ErrNothingToPause
	}

	c.mu.Lock()
	speaking := c.state.Speaking
	c.state.Speaking = !speaking
	c.mu.Unlock()

	if speaking {
		c.synth.Pause()
	} else {
		c.synth.Resume()
	}
	return nil
}

// LoadVoices keeps the voices matching the controller's locale and selects
// the first one, or none.
func (c *Controller) LoadVoices() {
	all := c.synth.Voices()

	voices := make([]Voice, 0, len(all))
	for _, v := range all {
		if v.Lang == c.lang {
			voices = append(voices, v)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Voices = voices
	c.state.SelectedVoice = nil
	if len(voices) > 0 {
		first := voices[0]
		c.state.SelectedVoice = &first
	}
}

// SelectVoice picks a loaded voice by name. An unknown name leaves no voice
// selected.
func (c *Controller) SelectVoice(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range c.state.Voices {
		if v.Name == name {
			selected := v
			c.state.SelectedVoice = &selected
			return nil
		}
	}

	c.state.SelectedVoice = nil
	return ErrVoiceNotFound
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Voices = append([]Voice(nil), c.state.Voices...)
	if c.state.SelectedVoice != nil {
		v := *c.state.SelectedVoice
		s.SelectedVoice = &v
	}
	return s
}
