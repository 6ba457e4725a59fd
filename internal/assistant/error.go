package assistant

import "errors"

var (
	ErrEmptyInput     = errors.New("input is empty")
	ErrVoiceNotFound  = errors.New("voice not found")
	ErrNoRecognizer   = errors.New("speech recognition is not available")
	ErrNothingToPause = errors.New("nothing is being spoken")
)
