// Package settings defines the persisted user settings blob: profile fields,
// language and voice selection, appearance overrides, security PIN, and
// recorded audio memos.
package settings

import "github.com/voxpad/voxpad/internal/i18n"

// Settings is the fully materialized user settings record. JSON field names
// match the persisted blob layout.
type Settings struct {
	Language i18n.Language `json:"language"`

	// Profile fields substituted into canned phrases during reconciliation.
	UserName         string `json:"userName"`
	UserInfo         string `json:"userInfo"`
	Address          string `json:"address"`
	Phone            string `json:"phone"`
	Age              string `json:"age"`
	Birthday         string `json:"birthday"`
	Allergies        string `json:"allergies"`
	EmergencyContact string `json:"emergencyContact"`
	DisabilityInfo   string `json:"disabilityInfo"`
	Caregiver        string `json:"caregiver"`

	// Text memos shown in settings; not bound to board words.
	Memo1         string `json:"memo1"`
	Memo2         string `json:"memo2"`
	ImportantMemo string `json:"importantMemo"`

	// Recorded audio memos, base64-encoded PCM payloads bound to the
	// memo-slot words during reconciliation. Empty means no recording.
	Memo1Audio         string `json:"memo1Audio,omitempty"`
	Memo2Audio         string `json:"memo2Audio,omitempty"`
	ImportantMemoAudio string `json:"importantMemoAudio,omitempty"`

	VoiceID string `json:"voiceName"`

	DarkMode            bool   `json:"darkMode"`
	CustomCategoryColor string `json:"customCategoryColor"`
	CustomWordColor     string `json:"customWordColor"`

	PINCode      string `json:"pinCode"`
	LockSettings bool   `json:"lockSettings"`
}

// Default returns the canonical settings used when nothing has been saved.
// Every field has a defined default so a partial blob always merges into a
// fully populated record.
func Default() Settings {
	return Settings{
		Language: i18n.Default,
		VoiceID:  "Kore",
	}
}

// SettingsLocked reports whether opening the settings surface must challenge
// for the PIN.
func (s Settings) SettingsLocked() bool {
	return s.LockSettings && s.PINCode != ""
}

// KioskExitLocked reports whether leaving fullscreen presentation mode must
// challenge for the PIN.
func (s Settings) KioskExitLocked() bool {
	return s.PINCode != ""
}

// PINMatches checks a PIN attempt. Exact string equality; the device is
// local and single-user, so no hashing or rate limiting applies.
func (s Settings) PINMatches(attempt string) bool {
	return s.PINCode != "" && attempt == s.PINCode
}
