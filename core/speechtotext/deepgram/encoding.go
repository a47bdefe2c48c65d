package deepgram

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/koscakluka/tripper/core/audio"
)

var supportedSampleRates = []int{8000, 16000, 24000, 32000, 44100, 48000}

// encodingParams describes raw audio to the listen endpoint. Companded
// formats are only accepted at telephone rate.
func encodingParams(info audio.EncodingInfo) (url.Values, error) {
	if !slices.Contains(supportedSampleRates, info.SampleRate) {
		return nil, fmt.Errorf("unsupported sample rate %d", info.SampleRate)
	}

	switch info.Format {
	case audio.EncodingLinear16:
	case audio.EncodingALaw, audio.EncodingMulaw:
		if info.SampleRate != 8000 {
			return nil, fmt.Errorf("%s audio must be sampled at 8000 Hz, got %d", info.Format.Name(), info.SampleRate)
		}
	default:
		return nil, fmt.Errorf("unsupported encoding %q", info.Format.Name())
	}

	return url.Values{
		"encoding":    {info.Format.Name()},
		"sample_rate": {strconv.Itoa(info.SampleRate)},
		"channels":    {strconv.Itoa(info.ChannelCount())},
	}, nil
}
