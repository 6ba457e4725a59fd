package main

import (
	"VoiceAssistant/internal/config"
	"VoiceAssistant/pkg/log"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	logger := log.NewLogger()
	config.LoadDotEnv(logger)

	env, err := config.NewEnv()
	if err != nil {
		logger.Fatal(err)
	}

	fiberApp := config.NewFiber(logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithEnv(env),
		config.WithMiddleware(),
		config.WithGeminiClient(context.Background()),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.WithFields(log.Fields{
		"port":      env.AppPort,
		"model":     env.GeminiModelName,
		"transport": env.GeminiTransport,
	}).Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
