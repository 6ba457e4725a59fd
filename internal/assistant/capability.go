package assistant

import "context"

// RecognitionConfig is what the controller asks of a recognizer: one result
// per session, final results only, in a fixed locale.
type RecognitionConfig struct {
	Lang           string
	Continuous     bool
	InterimResults bool
}

// RecognitionEvents are invoked by the recognizer, possibly from its own
// goroutine. OnEnd follows every session, including one that produced a
// result or an error.
type RecognitionEvents struct {
	OnResult func(transcript string)
	OnError  func(err error)
	OnEnd    func()
}

type Recognizer interface {
	Start(cfg RecognitionConfig, events RecognitionEvents) error
	Stop() error
}

type Voice struct {
	Name   string
	Lang   string
	Gender string
}

// Label is the text shown in a voice picker.
func (v Voice) Label() string {
	gender := v.Gender
	if gender == "" {
		gender = "Voice"
	}
	return v.Name + " (" + gender + ")"
}

// Utterance is one piece of text handed to a synthesizer. Voice is nil when
// the synthesizer should use its default. OnEnd fires once when playback
// finishes or is cancelled.
type Utterance struct {
	Text  string
	Voice *Voice
	OnEnd func()
}

// Synthesizer plays one utterance at a time.
type Synthesizer interface {
	Voices() []Voice
	OnVoicesChanged(fn func())
	Speak(u *Utterance)
	Cancel()
	Pause()
	Resume()
	Speaking() bool
}

type Relay interface {
	Chat(ctx context.Context, prompt string) (string, error)
}
