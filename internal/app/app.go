// Package app wires the CLI commands to the daemon, forwarding to a running
// instance when one owns the socket and doing the work locally otherwise.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/voxpad/voxpad/internal/audio"
	"github.com/voxpad/voxpad/internal/board"
	"github.com/voxpad/voxpad/internal/cli"
	"github.com/voxpad/voxpad/internal/doctor"
	"github.com/voxpad/voxpad/internal/ipc"
	"github.com/voxpad/voxpad/internal/logging"
	"github.com/voxpad/voxpad/internal/settings"
	"github.com/voxpad/voxpad/internal/speech"
	"github.com/voxpad/voxpad/internal/store"
	"github.com/voxpad/voxpad/internal/version"
)

const apiKeyEnv = "GEMINI_API_KEY"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("voxpad"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("voxpad"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	dbPath, err := resolveDBPath(parsed.StateDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logger.Info("command start",
		"command", parsed.Command,
		"state", dbPath,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(dbPath)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandServe:
		return r.commandServe(ctx, dbPath, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandSay:
		return r.commandSay(ctx, dbPath, parsed.Text, logger)
	case cli.CommandSpeak:
		return r.forwardOrFail(ctx, ipc.Request{Command: "speak"})
	case cli.CommandUndo:
		return r.forwardOrFail(ctx, ipc.Request{Command: "undo"})
	case cli.CommandDelete:
		return r.forwardOrFail(ctx, ipc.Request{Command: "delete"})
	case cli.CommandClear:
		return r.forwardOrFail(ctx, ipc.Request{Command: "clear"})
	case cli.CommandChime:
		return r.commandChime(ctx)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// resolveDBPath honors --state-dir and falls back to the XDG state home.
func resolveDBPath(stateDir string) (string, error) {
	if strings.TrimSpace(stateDir) != "" {
		return filepath.Join(stateDir, "voxpad.db"), nil
	}
	return store.DefaultPath()
}

// commandServe runs the board daemon until ctx is cancelled.
func (r Runner) commandServe(ctx context.Context, dbPath string, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: voxpad daemon already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	blobs, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = blobs.Close() }()

	b := board.New(logger, buildSynthesizer(logger), audio.NewPlayer(), memoRecorder{inner: audio.NewRecorder()}, blobs)
	if err := b.Start(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logger.Info("daemon listening", "socket", socketPath)
	if err := ipc.Serve(ctx, listener, b); err != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", err)
		return 1
	}
	return 0
}

// memoRecorder adapts the pulse recorder to the board's Recorder interface;
// the concrete Start return type needs lifting into board.Recording.
type memoRecorder struct {
	inner *audio.Recorder
}

func (m memoRecorder) Start(ctx context.Context) (board.Recording, error) {
	rec, err := m.inner.Start(ctx)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// buildSynthesizer returns the Gemini client, or nil (noop) without an API key.
func buildSynthesizer(logger *slog.Logger) speech.Synthesizer {
	synth, err := speech.NewClient(os.Getenv(apiKeyEnv))
	if err != nil {
		logger.Warn("speech synthesis disabled", "error", err)
		return nil
	}
	return synth
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: "status"})
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		if resp.Sentence != "" {
			fmt.Fprintln(r.Stdout, resp.Sentence)
		}
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

// commandSay forwards to a running daemon, or does a one-shot local
// synthesis when no daemon owns the socket.
func (r Runner) commandSay(ctx context.Context, dbPath, text string, logger *slog.Logger) int {
	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, ferr := tryForward(ctx, socketPath, ipc.Request{Command: "say", Text: text})
		if handled {
			if ferr != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", ferr)
				return 1
			}
			if resp.Message != "" {
				fmt.Fprintln(r.Stdout, resp.Message)
			}
			return 0
		}
	}

	synth, err := speech.NewClient(os.Getenv(apiKeyEnv))
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %s is not set\n", apiKeyEnv)
		return 1
	}

	voiceID := localVoice(ctx, dbPath, logger)
	clip, err := synth.Synthesize(ctx, text, voiceID)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	if err := audio.NewPlayer().Play(ctx, clip.PCM, speech.SampleRate, clip.Rate); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// localVoice reads the persisted voice selection for one-shot synthesis.
func localVoice(ctx context.Context, dbPath string, logger *slog.Logger) string {
	blobs, err := store.Open(dbPath)
	if err != nil {
		logger.Warn("open state for voice lookup failed", "error", err)
		return speech.DefaultVoiceID
	}
	defer func() { _ = blobs.Close() }()

	data, err := blobs.Get(ctx, "settings")
	if err != nil {
		return speech.DefaultVoiceID
	}
	s, _ := settings.Decode(data)
	return s.VoiceID
}

func (r Runner) commandChime(ctx context.Context) int {
	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		if _, handled, ferr := tryForward(ctx, socketPath, ipc.Request{Command: "chime"}); handled {
			if ferr != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", ferr)
				return 1
			}
			return 0
		}
	}

	if err := audio.NewPlayer().Chime(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintln(r.Stderr, "error: no running voxpad daemon")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	} else if resp.Sentence != "" {
		fmt.Fprintln(r.Stdout, resp.Sentence)
	}
	return 0
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, 10*time.Second)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
