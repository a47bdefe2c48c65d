package audio

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	info := EncodingInfo{SampleRate: 24000, Format: EncodingLinear16}

	wav, err := EncodeWAV(pcm, info)
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}
	if len(wav) != wavHeaderSize+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", wavHeaderSize+len(pcm), len(wav))
	}
	if !IsWAV(wav) {
		t.Fatalf("expected encoded data to be recognised as wav")
	}

	decoded, decodedInfo, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if !bytes.Equal(decoded, pcm) {
		t.Fatalf("expected samples %v, got %v", pcm, decoded)
	}
	if decodedInfo.SampleRate != 24000 || decodedInfo.Format != EncodingLinear16 || decodedInfo.ChannelCount() != 1 {
		t.Fatalf("unexpected encoding info: %+v", decodedInfo)
	}
}

func TestDecodeWAVRejectsOtherContainers(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("ID3\x04 not a wave file")); !errors.Is(err, ErrNotWAV) {
		t.Fatalf("expected ErrNotWAV, got %v", err)
	}
}

func TestEncodeWAVRejectsUnknownFormat(t *testing.T) {
	if _, err := EncodeWAV([]byte{0}, EncodingInfo{SampleRate: 8000, Format: "opus"}); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestBytesPerSecond(t *testing.T) {
	info := GetDefaultEncodingInfo()
	if got := info.BytesPerSecond(); got != 32000 {
		t.Fatalf("expected 32000 bytes per second, got %d", got)
	}
	if got := info.Duration(16000); got != 500*time.Millisecond {
		t.Fatalf("expected half a second, got %v", got)
	}
	if got := (EncodingInfo{SampleRate: 8000, Format: "opus"}).Duration(100); got != 0 {
		t.Fatalf("expected zero duration for unknown format, got %v", got)
	}
}
