package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	TransportSDK  = "sdk"
	TransportREST = "rest"

	defaultPort          = "5000"
	defaultModelName     = "gemini-2.0-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
)

// Env is the relay configuration. It is read once at process start and
// handed to the components that need it.
type Env struct {
	AppPort          string `validate:"required,numeric"`
	AppEnv           string
	GeminiAPIKey     string `validate:"required"`
	GeminiModelName  string `validate:"required"`
	GeminiTransport  string `validate:"oneof=sdk rest"`
	GeminiBaseURL    string `validate:"required,url"`
	BreakerEnabled   bool
	CORSAllowOrigins string `validate:"required"`
}

// LoadDotEnv loads .env when present. A missing file is not an error: the
// process environment alone is a valid configuration source.
func LoadDotEnv(logger *logrus.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}
}

func NewEnv() (*Env, error) {
	env := &Env{
		AppPort:          getenv("APP_PORT", defaultPort),
		AppEnv:           os.Getenv("APP_ENV"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModelName:  getenv("GEMINI_MODEL_NAME", defaultModelName),
		GeminiTransport:  strings.ToLower(getenv("GEMINI_TRANSPORT", TransportSDK)),
		GeminiBaseURL:    strings.TrimRight(getenv("GEMINI_BASE_URL", defaultGeminiBaseURL), "/"),
		CORSAllowOrigins: getenv("CORS_ALLOW_ORIGINS", "*"),
	}

	if raw := os.Getenv("GEMINI_BREAKER_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GEMINI_BREAKER_ENABLED %q: %w", raw, err)
		}
		env.BreakerEnabled = enabled
	}

	if err := NewValidator().Struct(env); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return env, nil
}

func NewValidator() *validator.Validate {
	return validator.New()
}

// ClientEnv configures the console assistant.
type ClientEnv struct {
	RelayURL  string `validate:"required,url"`
	VoiceLang string `validate:"required"`
}

func NewClientEnv() (*ClientEnv, error) {
	env := &ClientEnv{
		RelayURL:  strings.TrimRight(getenv("RELAY_URL", "http://localhost:"+defaultPort), "/"),
		VoiceLang: getenv("VOICE_LANG", "en-IN"),
	}

	if err := NewValidator().Struct(env); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return env, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
