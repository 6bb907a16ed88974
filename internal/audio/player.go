// Package audio plays synthesized speech and captures memo recordings
// through the Pulse sound server.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

// ErrNoAudio reports a playback request with no samples.
var ErrNoAudio = errors.New("audio: no samples to play")

// Player renders s16le mono PCM through Pulse.
type Player struct{}

// NewPlayer returns a Pulse-backed player.
func NewPlayer() *Player {
	return &Player{}
}

// Play renders pcm recorded at sampleRate. rate above 1.0 speeds playback up
// by telling Pulse the samples are denser than they are, which also raises
// the pitch; that is intentional for the child-style voices.
func (p *Player) Play(ctx context.Context, pcm []byte, sampleRate int, rate float64) error {
	samples := pcmToSamples(pcm)
	if len(samples) == 0 {
		return ErrNoAudio
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("voxpad"),
		pulse.ClientApplicationIconName("audio-speakers"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		select {
		case <-ctx.Done():
			return 0, pulse.EndOfData
		default:
		}
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(scaledSampleRate(sampleRate, rate)),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackMediaName("voxpad speech"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play speech stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Chime plays the attention ding-dong.
func (p *Player) Chime(ctx context.Context) error {
	return p.Play(ctx, samplesToPCM(chimePCM), chimeSampleRate, 1.0)
}

const chimeSampleRate = 16000

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

// Two descending tones, the classic doorbell shape.
var chimePCM = synthesizeCue([]toneSpec{
	{frequencyHz: 660, duration: 180 * time.Millisecond, volume: 0.24},
	{frequencyHz: 550, duration: 260 * time.Millisecond, volume: 0.24},
})

func synthesizeCue(parts []toneSpec) []int16 {
	if len(parts) == 0 {
		return nil
	}
	gapSamples := samplesForDuration(30 * time.Millisecond)
	total := 0
	for i, part := range parts {
		total += samplesForDuration(part.duration)
		if i < len(parts)-1 {
			total += gapSamples
		}
	}

	pcm := make([]int16, 0, total)
	for i, part := range parts {
		pcm = append(pcm, synthesizeTone(part)...)
		if i < len(parts)-1 && gapSamples > 0 {
			pcm = append(pcm, make([]int16, gapSamples)...)
		}
	}

	return pcm
}

func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	attackRelease := n / 10
	maxRamp := chimeSampleRate / 200 // 5ms
	if attackRelease > maxRamp {
		attackRelease = maxRamp
	}
	if attackRelease < 1 {
		attackRelease = 1
	}

	pcm := make([]int16, n)
	for i := 0; i < n; i++ {
		envelope := 1.0
		if i < attackRelease {
			envelope = float64(i) / float64(attackRelease)
		}
		releaseIndex := n - i - 1
		if releaseIndex < attackRelease {
			release := float64(releaseIndex) / float64(attackRelease)
			if release < envelope {
				envelope = release
			}
		}
		t := float64(i) / chimeSampleRate
		sample := math.Sin(2 * math.Pi * spec.frequencyHz * t)
		pcm[i] = int16(math.Round(sample * spec.volume * envelope * 32767))
	}

	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * chimeSampleRate))
}

// pcmToSamples decodes s16le bytes; a trailing odd byte is dropped.
func pcmToSamples(pcm []byte) []int16 {
	samples := make([]int16, 0, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		samples = append(samples, int16(uint16(pcm[i])|uint16(pcm[i+1])<<8))
	}
	return samples
}

// samplesToPCM encodes int16 samples as s16le bytes.
func samplesToPCM(samples []int16) []byte {
	pcm := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		pcm = append(pcm, byte(uint16(s)), byte(uint16(s)>>8))
	}
	return pcm
}

// scaledSampleRate applies the playback-rate pitch trick. Nonsensical rates
// play at the recorded speed.
func scaledSampleRate(sampleRate int, rate float64) int {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 1.0
	}
	return int(math.Round(float64(sampleRate) * rate))
}
