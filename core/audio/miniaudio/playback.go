package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/tripper/core/audio"
)

// Play plays linear16 audio on the default output device and blocks until
// the buffer is drained.
func (c *Client) Play(ctx context.Context, pcm []byte, info audio.EncodingInfo) error {
	if c.audioContext == nil {
		return fmt.Errorf("audio context closed")
	}
	if info.Format != audio.EncodingLinear16 {
		return fmt.Errorf("unsupported playback encoding %q", info.Format.Name())
	}
	if len(pcm) == 0 {
		return nil
	}

	format := malgo.FormatS16
	channels := info.ChannelCount()
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = uint32(info.SampleRate)
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = uint32(info.SampleRate) / 10 // ~100ms of audio
	config.Periods = 4

	var (
		leftover = pcm
		mu       sync.Mutex
		drained  = make(chan struct{})
		once     sync.Once
	)

	device, err := malgo.InitDevice(c.audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			need := int(frameCount) * bytesPerFrame

			mu.Lock()
			defer mu.Unlock()
			if len(leftover) == 0 {
				once.Do(func() { close(drained) })
				return
			}

			n := copy(pOutput[:min(need, len(pOutput))], leftover)
			leftover = leftover[n:]
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	select {
	case <-drained:
	case <-ctx.Done():
	}

	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}
	return ctx.Err()
}
