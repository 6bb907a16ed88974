package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotWAV reports data that does not carry a RIFF/WAVE header.
var ErrNotWAV = errors.New("audio: not a wav container")

const wavHeaderSize = 44

// EncodeWAV wraps mono s16le PCM in a minimal RIFF/WAVE container so memo
// blobs stay playable outside the daemon.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = RecordSampleRate
	}

	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, wavHeaderSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)
	return out
}

// DecodeWAV extracts the s16le PCM payload and sample rate from a container
// produced by EncodeWAV. Only the canonical 44-byte header layout is
// accepted; memo blobs are always written by this package.
func DecodeWAV(data []byte) ([]byte, int, error) {
	if len(data) < wavHeaderSize ||
		string(data[0:4]) != "RIFF" ||
		string(data[8:12]) != "WAVE" ||
		string(data[12:16]) != "fmt " {
		return nil, 0, ErrNotWAV
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		return nil, 0, fmt.Errorf("audio: unsupported wav format %d", format)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		return nil, 0, fmt.Errorf("audio: unsupported wav bit depth %d", bits)
	}
	if string(data[36:40]) != "data" {
		return nil, 0, ErrNotWAV
	}

	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	size := int(binary.LittleEndian.Uint32(data[40:44]))
	payload := data[wavHeaderSize:]
	if size > len(payload) {
		size = len(payload)
	}
	return payload[:size], sampleRate, nil
}
