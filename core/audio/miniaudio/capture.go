package miniaudio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/tripper/core/audio"
)

// Record captures mono linear16 audio from the default input device.
func (c *Client) Record(ctx context.Context, duration time.Duration) ([]byte, audio.EncodingInfo, error) {
	if c.audioContext == nil {
		return nil, audio.EncodingInfo{}, fmt.Errorf("audio context closed")
	}

	info := c.encodingInfo
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * info.ChannelCount()

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(info.SampleRate)
	config.Capture.Format = format
	config.Capture.Channels = uint32(info.ChannelCount())
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	var (
		recorded []byte
		mu       sync.Mutex
	)
	if info.BytesPerSecond() > 0 {
		recorded = make([]byte, 0, int(duration.Seconds()*float64(info.BytesPerSecond())))
	}

	device, err := malgo.InitDevice(c.audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			mu.Lock()
			recorded = append(recorded, pInput[:n]...)
			mu.Unlock()
		},
	})
	if err != nil {
		return nil, audio.EncodingInfo{}, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return nil, audio.EncodingInfo{}, fmt.Errorf("failed to start capture device: %w", err)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	if err := device.Stop(); err != nil {
		return nil, audio.EncodingInfo{}, fmt.Errorf("failed to stop capture device: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return recorded, info, nil
}
