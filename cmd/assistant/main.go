package main

import (
	"VoiceAssistant/internal/assistant"
	"VoiceAssistant/internal/assistant/console"
	"VoiceAssistant/internal/config"
	"VoiceAssistant/pkg/log"
	"VoiceAssistant/pkg/relay"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	logger := log.NewLogger()
	config.LoadDotEnv(logger)

	env, err := config.NewClientEnv()
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	synth := console.NewSynthesizer(os.Stdout)
	recognizer := console.NewRecognizer()

	ctrl := assistant.New(ctx, logger, relay.NewClient(env.RelayURL), synth,
		assistant.WithRecognizer(recognizer),
		assistant.WithLang(env.VoiceLang),
	)

	logger.WithFields(log.Fields{
		"relay": env.RelayURL,
		"lang":  env.VoiceLang,
	}).Debug("Assistant started")

	if err := console.NewREPL(ctrl, recognizer, os.Stdout).Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		logger.Errorf("Error reading input: %v", err)
	}

	synth.Cancel()
}
