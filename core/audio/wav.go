package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrNotWAV = errors.New("not a RIFF/WAVE stream")

const (
	wavHeaderSize = 44
	wavFormatPCM  = 1
	wavFormatALaw = 6
	wavFormatULaw = 7
)

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// EncodeWAV wraps raw samples into a WAV container.
func EncodeWAV(pcm []byte, info EncodingInfo) ([]byte, error) {
	byteSize := info.Format.SampleSize()
	if byteSize == 0 {
		return nil, fmt.Errorf("unsupported encoding %q", info.Format.Name())
	}

	format := uint16(wavFormatPCM)
	switch info.Format {
	case EncodingALaw:
		format = wavFormatALaw
	case EncodingMulaw:
		format = wavFormatULaw
	}

	channels := info.ChannelCount()
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(wavHeaderSize - 8 + len(pcm)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   format,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(info.SampleRate),
		ByteRate:      uint32(info.BytesPerSecond()),
		BlockAlign:    uint16(byteSize * channels),
		BitsPerSample: uint16(byteSize * 8),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write wav header: %w", err)
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// DecodeWAV returns the samples and encoding of a WAV stream. Chunks other
// than "fmt " and "data" are skipped.
func DecodeWAV(data []byte) ([]byte, EncodingInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, EncodingInfo{}, ErrNotWAV
	}

	var info EncodingInfo
	haveFormat := false
	for offset := 12; offset+8 <= len(data); {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, EncodingInfo{}, fmt.Errorf("short fmt chunk: %d bytes", size)
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			info.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample := binary.LittleEndian.Uint16(data[body+14 : body+16])
			switch {
			case audioFormat == wavFormatPCM && bitsPerSample == 16:
				info.Format = EncodingLinear16
			case audioFormat == wavFormatALaw:
				info.Format = EncodingALaw
			case audioFormat == wavFormatULaw:
				info.Format = EncodingMulaw
			default:
				return nil, EncodingInfo{}, fmt.Errorf("unsupported wav format %d with %d bits", audioFormat, bitsPerSample)
			}
			haveFormat = true
		case "data":
			if !haveFormat {
				return nil, EncodingInfo{}, errors.New("data chunk before fmt chunk")
			}
			return data[body : body+size], info, nil
		}

		// chunks are padded to an even size
		offset = body + size + size%2
	}

	return nil, EncodingInfo{}, errors.New("missing data chunk")
}

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}
