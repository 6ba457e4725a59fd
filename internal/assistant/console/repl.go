package console

import (
	"VoiceAssistant/internal/assistant"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const help = `Type a message and press enter to send it.
  /mic          start or stop voice input (the next line is what you say)
  /pause        pause or resume speech
  /voices       list voices
  /voice <name> select a voice
  /quit         exit`

// REPL is the terminal front end: it reads commands and typed input, feeds
// the controller and renders its state.
type REPL struct {
	ctrl       *assistant.Controller
	recognizer *Recognizer
	out        io.Writer
}

func NewREPL(ctrl *assistant.Controller, recognizer *Recognizer, out io.Writer) *REPL {
	return &REPL{ctrl: ctrl, recognizer: recognizer, out: out}
}

// Run reads lines from in until /quit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, help)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := r.handle(ctx, scanner.Text()); quit {
			return nil
		}
	}
	return scanner.Err()
}

// handle runs one line. Commands win over an open recognition session; any
// other line is the transcript when a session is open and typed input
// otherwise.
func (r *REPL) handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "/quit":
		return true
	case "/help":
		fmt.Fprintln(r.out, help)
	case "/mic":
		r.toggleMic()
	case "/pause":
		if err := r.ctrl.TogglePause(); err != nil {
			fmt.Fprintln(r.out, "Nothing to pause.")
		}
	case "/voices":
		r.listVoices()
	case "/voice":
		name := strings.TrimSpace(arg)
		if err := r.ctrl.SelectVoice(name); err != nil {
			fmt.Fprintf(r.out, "Unknown voice %q, using the default voice.\n", name)
			return false
		}
		fmt.Fprintf(r.out, "Voice set to %s.\n", name)
	default:
		before := r.ctrl.Snapshot().Replies
		if r.recognizer != nil && r.recognizer.Feed(line) {
			if r.ctrl.Snapshot().Replies != before {
				r.render()
			}
			return false
		}

		r.ctrl.SetInput(line)
		err := r.ctrl.Send(ctx)
		switch {
		case errors.Is(err, assistant.ErrEmptyInput):
		case err != nil:
			// The controller has logged it; the reply area stays as it was.
		default:
			r.render()
		}
	}
	return false
}

func (r *REPL) toggleMic() {
	if err := r.ctrl.ToggleMic(); err != nil {
		fmt.Fprintf(r.out, "Voice input unavailable: %v\n", err)
		return
	}
	if r.ctrl.Snapshot().Listening {
		fmt.Fprintln(r.out, "Listening... say something (type it and press enter).")
	} else {
		fmt.Fprintln(r.out, "Stopped listening.")
	}
}

func (r *REPL) listVoices() {
	s := r.ctrl.Snapshot()
	if len(s.Voices) == 0 {
		fmt.Fprintln(r.out, "No voices for this language.")
		return
	}
	for _, v := range s.Voices {
		marker := " "
		if s.SelectedVoice != nil && s.SelectedVoice.Name == v.Name {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %s\n", marker, v.Label())
	}
}

func (r *REPL) render() {
	s := r.ctrl.Snapshot()
	fmt.Fprintf(r.out, "You: %s\nAssistant: %s\n", s.LastUserInput, s.Reply)
}
