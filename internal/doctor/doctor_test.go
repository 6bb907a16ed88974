package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxpad/voxpad/internal/store"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "some-key")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.TrimSpace(v) != "" },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckStateStoreFreshDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "voxpad.db")

	check := checkStateStore(dbPath)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "no settings saved yet")
}

func TestCheckStateStoreReportsRepairedSettings(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "voxpad.db")

	seed := checkStateStore(dbPath)
	require.True(t, seed.Pass)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "settings", []byte(`{"language":"klingon"}`)))
	require.NoError(t, s.Close())

	check := checkStateStore(dbPath)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "settings repaired")
}

func TestCheckSpeechEndpointReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	check := checkSpeechEndpoint(server.URL)
	require.True(t, check.Pass, "any HTTP response counts as reachable")
	require.Contains(t, check.Message, "HTTP 404")
}

func TestCheckSpeechEndpointUnreachable(t *testing.T) {
	check := checkSpeechEndpoint("http://127.0.0.1:1")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "request failed")
}

func TestCheckPulseFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkPulse()
	require.False(t, check.Pass)
	require.Equal(t, "audio.pulse", check.Name)
}
