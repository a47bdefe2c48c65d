package audio

import (
	"context"
	"time"
)

// Recorder captures raw audio from an input device.
type Recorder interface {
	// Record captures audio until the duration elapses or ctx is done,
	// whichever comes first.
	Record(ctx context.Context, duration time.Duration) ([]byte, EncodingInfo, error)
	Close()
}

// Player plays raw audio on an output device.
type Player interface {
	// Play blocks until the audio has been played or ctx is done.
	Play(ctx context.Context, pcm []byte, info EncodingInfo) error
	Close()
}
