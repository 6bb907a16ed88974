package speech

// Voice describes a selectable voice. Rate above 1.0 plays the clip faster
// and higher, which is how the child-style voices are derived from the
// backend's adult presets.
type Voice struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Backend string  `json:"backend"`
	Rate    float64 `json:"rate"`
}

var voices = []Voice{
	{ID: "Kore", Label: "Kore (Female)", Backend: "Kore", Rate: 1.0},
	{ID: "Puck", Label: "Puck (Male)", Backend: "Puck", Rate: 1.0},
	{ID: "Charon", Label: "Charon (Deep Male)", Backend: "Charon", Rate: 1.0},
	{ID: "Fenrir", Label: "Fenrir (Intense)", Backend: "Fenrir", Rate: 1.0},
	{ID: "Zephyr", Label: "Zephyr (Bright)", Backend: "Zephyr", Rate: 1.0},
	{ID: "Boy", Label: "Boy (Young Male)", Backend: "Puck", Rate: 1.15},
	{ID: "Girl", Label: "Girl (Young Female)", Backend: "Kore", Rate: 1.15},
}

// DefaultVoiceID is used when settings carry no usable voice.
const DefaultVoiceID = "Kore"

// Voices returns the selectable voice catalog in display order.
func Voices() []Voice {
	out := make([]Voice, len(voices))
	copy(out, voices)
	return out
}

// VoiceByID resolves a voice ID, falling back to the default for unknown IDs
// so a stale persisted selection still speaks.
func VoiceByID(id string) Voice {
	for _, v := range voices {
		if v.ID == id {
			return v
		}
	}
	return VoiceByID(DefaultVoiceID)
}
