package texttospeech

import (
	"context"
	"errors"

	"github.com/koscakluka/tripper/core/audio"
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("no text to synthesize")

// Audio is a synthesized utterance.
type Audio struct {
	// Data holds the whole artifact, including its container
	Data        []byte
	ContentType string
	// Extension is the file extension matching ContentType, with the dot
	Extension string

	EncodingInfo audio.EncodingInfo
}

// Synthesizer turns text into speech in the language identified by a short
// code such as "en" or "ja".
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, languageCode string) (Audio, error)
}

type TextToSpeechOptions struct {
	EncodingInfo audio.EncodingInfo
	// Voices maps language codes to voice names
	Voices map[string]string
	// DefaultVoice is used when a language has no voice of its own
	DefaultVoice string
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		o.EncodingInfo = encodingInfo
	}
}

// WithVoice sets the voice used for a language code, overriding any default.
func WithVoice(languageCode, voice string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if o.Voices == nil {
			o.Voices = map[string]string{}
		}
		o.Voices[languageCode] = voice
	}
}

func WithDefaultVoice(voice string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if voice != "" {
			o.DefaultVoice = voice
		}
	}
}

// Voice returns the voice for the language code and whether it was an exact
// match rather than the default.
func (o TextToSpeechOptions) Voice(languageCode string) (string, bool) {
	if voice, ok := o.Voices[languageCode]; ok && voice != "" {
		return voice, true
	}
	return o.DefaultVoice, false
}
