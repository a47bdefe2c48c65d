package speechtotext

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnintelligible means the audio reached the service but no speech was
	// recognised.
	ErrUnintelligible = errors.New("speech could not be recognised")
	// ErrUnavailable means the transcription service could not be reached.
	ErrUnavailable = errors.New("transcription service unavailable")
)

const (
	unintelligibleMessage = "Cannot read voice"
	unavailableMessage    = "Not available"
)

// Transcriber turns a recorded utterance into text. The language is a short
// code such as "en" or "ja", an empty language lets the service decide.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// UserMessage renders a transcription error as the text shown in place of
// the transcript. Errors that are neither unintelligible nor unavailable
// audio are reported as unavailable.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnintelligible):
		return unintelligibleMessage
	default:
		return unavailableMessage
	}
}

var languageTags = map[string]string{
	"en": "en-US",
	"fr": "fr-FR",
	"es": "es-ES",
	"de": "de-DE",
	"it": "it-IT",
	"ja": "ja-JP",
	"zh": "zh-CN",
}

// LanguageTag returns the BCP-47 tag used for recognition of a language
// code, defaulting to American English.
func LanguageTag(code string) string {
	code = strings.TrimSpace(code)
	if tag, ok := languageTags[strings.ToLower(code)]; ok {
		return tag
	}
	if strings.Contains(code, "-") {
		return code
	}
	return "en-US"
}
