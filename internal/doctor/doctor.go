// Package doctor runs runtime readiness diagnostics for state, audio, and
// the speech backend.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jfreymuth/pulse"
	"github.com/voxpad/voxpad/internal/settings"
	"github.com/voxpad/voxpad/internal/store"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/state/runtime checks against the blob store at
// dbPath.
func Run(dbPath string) Report {
	checks := []Check{}

	checks = append(checks, checkStateStore(dbPath))
	checks = append(checks, checkEnv("GEMINI_API_KEY", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "speech API key is configured", "GEMINI_API_KEY is empty; speak commands will fail"))
	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "runtime socket dir is available", "XDG_RUNTIME_DIR is empty; the daemon socket has no home"))
	checks = append(checks, checkSpeechEndpoint("https://generativelanguage.googleapis.com"))
	checks = append(checks, checkPulse())

	return Report{Checks: checks}
}

// checkStateStore opens the blob store and decodes the settings blob,
// surfacing repairs as part of the message.
func checkStateStore(dbPath string) Check {
	if dbPath == "" {
		resolved, err := store.DefaultPath()
		if err != nil {
			return Check{Name: "state.store", Pass: false, Message: fmt.Sprintf("resolve state path: %v", err)}
		}
		dbPath = resolved
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return Check{Name: "state.store", Pass: false, Message: fmt.Sprintf("state dir not writable: %v", err)}
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return Check{Name: "state.store", Pass: false, Message: err.Error()}
	}
	defer s.Close()

	data, err := s.Get(context.Background(), "settings")
	if err != nil {
		return Check{Name: "state.store", Pass: true, Message: fmt.Sprintf("open %q (no settings saved yet)", dbPath)}
	}

	_, warnings := settings.Decode(data)
	if len(warnings) > 0 {
		return Check{Name: "state.store", Pass: true, Message: fmt.Sprintf("open %q (settings repaired: %s)", dbPath, warnings[0].Message)}
	}
	return Check{Name: "state.store", Pass: true, Message: fmt.Sprintf("open %q", dbPath)}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkSpeechEndpoint probes the synthesis API host. Any HTTP response
// counts as reachable; authentication is not exercised here.
func checkSpeechEndpoint(base string) Check {
	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(base)
	if err != nil {
		return Check{Name: "speech.endpoint", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	return Check{Name: "speech.endpoint", Pass: true, Message: fmt.Sprintf("reachable (HTTP %d)", resp.StatusCode)}
}

// checkPulse opens and closes a Pulse client connection.
func checkPulse() Check {
	client, err := pulse.NewClient(pulse.ClientApplicationName("voxpad"))
	if err != nil {
		return Check{Name: "audio.pulse", Pass: false, Message: fmt.Sprintf("connect pulse server: %v", err)}
	}
	client.Close()
	return Check{Name: "audio.pulse", Pass: true, Message: "sound server reachable"}
}
