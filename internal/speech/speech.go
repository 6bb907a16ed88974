// Package speech turns sentence text into playable PCM audio.
package speech

import (
	"context"
	"errors"
)

// SampleRate is the PCM sample rate produced by synthesis, in Hz.
const SampleRate = 24000

var (
	// ErrMissingAPIKey reports that no API key is configured for the
	// synthesis backend.
	ErrMissingAPIKey = errors.New("speech: missing API key")

	// ErrEmptyText reports a synthesis request with nothing to say.
	ErrEmptyText = errors.New("speech: empty text")

	// ErrEmptyAudio reports a backend response that carried no audio data.
	ErrEmptyAudio = errors.New("speech: response contained no audio")
)

// Clip is synthesized audio plus the playback adjustments the chosen voice
// asks for. PCM is signed 16-bit little-endian mono at SampleRate.
type Clip struct {
	PCM  []byte
	Rate float64
}

// Synthesizer produces a Clip for a sentence in a given voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (Clip, error)
}
