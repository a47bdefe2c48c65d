package audio

import "time"

// Format is a raw sample encoding, named the way speech services name it.
type Format string

const (
	EncodingLinear16 Format = "linear16"
	EncodingMulaw    Format = "mulaw"
	EncodingALaw     Format = "alaw"
)

func (f Format) Name() string { return string(f) }

// SampleSize is the size of one sample of one channel in bytes, 0 when the
// format is unknown.
func (f Format) SampleSize() int {
	switch f {
	case EncodingLinear16:
		return 2
	case EncodingMulaw, EncodingALaw:
		return 1
	}
	return 0
}

// EncodingInfo describes raw audio. Devices record mono 16 kHz linear16 by
// default.
type EncodingInfo struct {
	SampleRate int
	Format     Format
	// Channels defaults to mono when zero
	Channels int
}

// DefaultSampleRate is the rate devices record at unless configured.
const DefaultSampleRate = 16000

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: EncodingLinear16, Channels: 1}
}

func (e EncodingInfo) ChannelCount() int {
	return max(e.Channels, 1)
}

// BytesPerSecond is 0 for unknown formats.
func (e EncodingInfo) BytesPerSecond() int {
	return e.SampleRate * e.Format.SampleSize() * e.ChannelCount()
}

// Duration is how long size bytes of audio play for.
func (e EncodingInfo) Duration(size int) time.Duration {
	perSecond := e.BytesPerSecond()
	if perSecond == 0 {
		return 0
	}
	return time.Duration(size) * time.Second / time.Duration(perSecond)
}
