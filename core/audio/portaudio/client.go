package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/tripper/core/audio"
)

// Client records and plays mono linear16 audio through PortAudio's default
// devices using blocking streams.
type Client struct {
	bufferSize int
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Client{bufferSize: bufferSize}, nil
}

func (c *Client) Close() {
	_ = portaudio.Terminate()
}

func (c *Client) Record(ctx context.Context, duration time.Duration) ([]byte, audio.EncodingInfo, error) {
	info := audio.GetDefaultEncodingInfo()

	in := make([]int16, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(info.SampleRate), c.bufferSize, in)
	if err != nil {
		return nil, audio.EncodingInfo{}, fmt.Errorf("failed to open PortAudio input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, audio.EncodingInfo{}, fmt.Errorf("failed to start PortAudio stream: %w", err)
	}
	defer stream.Stop()

	audioBuffer := bytes.Buffer{}
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		if err := stream.Read(); err != nil {
			return nil, audio.EncodingInfo{}, fmt.Errorf("failed to read from PortAudio stream: %w", err)
		}
		if err := binary.Write(&audioBuffer, binary.LittleEndian, in); err != nil {
			return nil, audio.EncodingInfo{}, fmt.Errorf("failed to buffer samples: %w", err)
		}
	}

	return audioBuffer.Bytes(), info, nil
}

func (c *Client) Play(ctx context.Context, pcm []byte, info audio.EncodingInfo) error {
	if info.Format != audio.EncodingLinear16 {
		return fmt.Errorf("unsupported playback encoding %q", info.Format.Name())
	}

	out := make([]int16, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, info.ChannelCount(), float64(info.SampleRate), c.bufferSize/info.ChannelCount(), out)
	if err != nil {
		return fmt.Errorf("failed to open PortAudio output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}
	defer stream.Stop()

	chunkSize := c.bufferSize * 2
	for offset := 0; offset < len(pcm); offset += chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := make([]byte, chunkSize)
		copy(chunk, pcm[offset:min(offset+chunkSize, len(pcm))])
		if err := binary.Read(bytes.NewReader(chunk), binary.LittleEndian, out); err != nil {
			return fmt.Errorf("failed to decode samples: %w", err)
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write to PortAudio stream: %w", err)
		}
	}
	return nil
}
