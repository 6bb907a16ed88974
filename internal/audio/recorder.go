package audio

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// RecordSampleRate matches the synthesis rate so memo playback shares the
// speech path unchanged.
const RecordSampleRate = 24000

// Recorder captures a memo from the default Pulse input source.
type Recorder struct{}

// NewRecorder returns a Pulse-backed memo recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Recording is one in-progress memo capture. Stop returns the accumulated
// s16le mono PCM.
type Recording struct {
	client *pulse.Client
	stream *pulse.RecordStream

	mu      sync.Mutex
	pcm     []byte
	stopped bool
}

// Start opens a 24kHz mono s16 record stream on the default source. The
// stream runs until Stop or until ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) (*Recording, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("voxpad"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	rec := &Recording{client: client}

	writer := pulse.NewWriter(writerFunc(rec.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordMono,
		pulse.RecordSampleRate(RecordSampleRate),
		pulse.RecordMediaName("voxpad memo"),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	rec.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		_, _ = rec.Stop()
	}()

	return rec, nil
}

// Stop halts capture and returns the recorded PCM. Calling Stop again
// returns the same bytes.
func (rec *Recording) Stop() ([]byte, error) {
	rec.mu.Lock()
	if rec.stopped {
		out := append([]byte(nil), rec.pcm...)
		rec.mu.Unlock()
		return out, nil
	}
	rec.stopped = true
	rec.mu.Unlock()

	if rec.stream != nil {
		rec.stream.Stop()
		rec.stream.Close()
	}
	if rec.client != nil {
		rec.client.Close()
	}

	rec.mu.Lock()
	out := append([]byte(nil), rec.pcm...)
	rec.mu.Unlock()
	return out, nil
}

func (rec *Recording) onPCM(buffer []byte) (int, error) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.stopped {
		return 0, io.EOF
	}
	rec.pcm = append(rec.pcm, buffer...)
	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
