package settings

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxpad/voxpad/internal/i18n"
)

func TestDefaultIsFullyPopulated(t *testing.T) {
	s := Default()
	require.Equal(t, i18n.English, s.Language)
	require.Equal(t, "Kore", s.VoiceID)
	require.False(t, s.DarkMode)
	require.False(t, s.LockSettings)
	require.Empty(t, s.PINCode)
}

func TestDecodeMergesPartialBlobOverDefaults(t *testing.T) {
	s, warnings := Decode([]byte(`{"userName":"Jamie","language":"de"}`))
	require.Empty(t, warnings)
	require.Equal(t, "Jamie", s.UserName)
	require.Equal(t, i18n.German, s.Language)
	// Untouched fields keep their defaults.
	require.Equal(t, "Kore", s.VoiceID)
}

func TestDecodeEmptyBlobYieldsDefaults(t *testing.T) {
	s, warnings := Decode(nil)
	require.Empty(t, warnings)
	require.Equal(t, Default(), s)
}

func TestDecodeMalformedBlobFallsBackToDefaults(t *testing.T) {
	s, warnings := Decode([]byte(`{"userName": `))
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "malformed")
	require.Equal(t, Default(), s)
}

func TestDecodeNormalizesUnknownLanguage(t *testing.T) {
	s, warnings := Decode([]byte(`{"language":"xx"}`))
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "unsupported language")
	require.Equal(t, i18n.English, s.Language)
}

func TestDecodeWarnsOnNonNumericPIN(t *testing.T) {
	s, warnings := Decode([]byte(`{"pinCode":"ab12"}`))
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "pinCode")
	// The PIN is kept as stored; the warning is advisory.
	require.Equal(t, "ab12", s.PINCode)
}

func TestEncodeDecodeKeepsAudioMemos(t *testing.T) {
	s := Default()
	s.Memo1Audio = "QUJD"
	s.PINCode = "1234"

	data, err := Encode(s)
	require.NoError(t, err)

	restored, warnings := Decode(data)
	require.Empty(t, warnings)
	require.Equal(t, s, restored)
}

func TestSettingsLocked(t *testing.T) {
	s := Default()
	require.False(t, s.SettingsLocked())

	s.LockSettings = true
	require.False(t, s.SettingsLocked(), "lock without a PIN does not gate")

	s.PINCode = "1234"
	require.True(t, s.SettingsLocked())
}

func TestKioskExitLockedWheneverPINConfigured(t *testing.T) {
	s := Default()
	require.False(t, s.KioskExitLocked())

	s.PINCode = "0000"
	require.True(t, s.KioskExitLocked(), "kiosk exit is gated by PIN presence alone")
}

func TestPINMatches(t *testing.T) {
	s := Default()
	require.False(t, s.PINMatches(""), "empty configured PIN never matches")

	s.PINCode = "1234"
	require.True(t, s.PINMatches("1234"))
	require.False(t, s.PINMatches("12345"))
	require.False(t, s.PINMatches(""))
}
