package console

import (
	"VoiceAssistant/pkg/log"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

type relayFunc func(prompt string) (string, error)

func (f relayFunc) Chat(ctx context.Context, prompt string) (string, error) {
	return f(prompt)
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func discardLogger() *logrus.Logger {
	return log.NewDiscardLogger()
}
