package settings

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/voxpad/voxpad/internal/i18n"
)

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}

// Decode merges a persisted settings blob over the defaults. Corrupt data is
// never fatal: the defaults come back along with a warning, since a broken
// blob must not take the board down.
func Decode(data []byte) (Settings, []Warning) {
	s := Default()
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), []Warning{{
			Message: fmt.Sprintf("stored settings are malformed (%v); using defaults", err),
		}}
	}

	warnings := normalize(&s)
	return s, warnings
}

// Encode serializes settings for persistence.
func Encode(s Settings) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

// normalize repairs out-of-range values in place and reports what changed.
func normalize(s *Settings) []Warning {
	var warnings []Warning

	if normalized := i18n.Normalize(s.Language); normalized != s.Language {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("unsupported language %q; falling back to %q", s.Language, normalized),
		})
		s.Language = normalized
	}

	if strings.TrimSpace(s.VoiceID) == "" {
		s.VoiceID = Default().VoiceID
	}

	if s.PINCode != "" && !isDigits(s.PINCode) {
		warnings = append(warnings, Warning{
			Message: "pinCode contains non-digit characters",
		})
	}

	return warnings
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
