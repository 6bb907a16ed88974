// Package ipc carries board commands between the voxpad daemon and its
// clients over a unix socket, one JSON request and response per connection.
package ipc

import "encoding/json"

// Request is one board command. Only the fields a command needs are set.
type Request struct {
	Command string `json:"command"`

	// Free text: set-text, say, add-word labels.
	Text string `json:"text,omitempty"`

	// Word identity inside the open category.
	Icon  string `json:"icon,omitempty"`
	Label string `json:"label,omitempty"`

	// Category display name for open/add-word targeting.
	Category string `json:"category,omitempty"`

	// Virtual key for the "key" command (SPACE, BACKSPACE).
	Key string `json:"key,omitempty"`

	// Color for add-category.
	Color string `json:"color,omitempty"`

	// Reorder bounds for the open category's word grid.
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`

	// PIN for settings-save and kiosk-exit when a lock is configured.
	PIN string `json:"pin,omitempty"`

	// Memo slot for record-stop (1, 2, or 3 for the starred memo).
	Slot int `json:"slot,omitempty"`

	// Settings payload for settings-save.
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Response reports the outcome plus whatever board state the command reads.
type Response struct {
	OK       bool   `json:"ok"`
	State    string `json:"state,omitempty"`
	Sentence string `json:"sentence,omitempty"`
	CanUndo  bool   `json:"canUndo,omitempty"`
	Open     string `json:"open,omitempty"`
	Kiosk    bool   `json:"kiosk,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`

	// Categories for the categories command; Settings for settings-get;
	// Voices and Languages for the catalog queries.
	Categories json.RawMessage `json:"categories,omitempty"`
	Settings   json.RawMessage `json:"settings,omitempty"`
	Voices     json.RawMessage `json:"voices,omitempty"`
	Languages  json.RawMessage `json:"languages,omitempty"`
}
