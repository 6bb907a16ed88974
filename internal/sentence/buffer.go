// Package sentence maintains the in-progress utterance: an ordered token
// list plus an undo history, kept in sync with free-text and on-screen
// keyboard edits.
package sentence

import "strings"

// Buffer holds the sentence under construction and its undo snapshots.
// The zero value is not usable; construct with NewBuffer.
type Buffer struct {
	tokens  []string
	history [][]string
}

// NewBuffer returns an empty sentence buffer with no history.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Tokens returns a copy of the current token sequence.
func (b *Buffer) Tokens() []string {
	out := make([]string, len(b.tokens))
	copy(out, b.tokens)
	return out
}

// Text renders the authoritative current sentence: tokens joined by single spaces.
func (b *Buffer) Text() string {
	return strings.Join(b.tokens, " ")
}

// Empty reports whether the sentence holds no tokens.
func (b *Buffer) Empty() bool {
	return len(b.tokens) == 0
}

// CanUndo reports whether at least one prior snapshot exists.
func (b *Buffer) CanUndo() bool {
	return len(b.history) > 0
}

// snapshot pushes the current token sequence onto the undo history.
func (b *Buffer) snapshot() {
	snap := make([]string, len(b.tokens))
	copy(snap, b.tokens)
	b.history = append(b.history, snap)
}

// AppendToken records an undo snapshot, drops blank tokens, and appends text.
// Used for both word selection and category auto-phrase insertion.
func (b *Buffer) AppendToken(text string) {
	b.snapshot()

	clean := make([]string, 0, len(b.tokens)+1)
	for _, token := range b.tokens {
		if strings.TrimSpace(token) != "" {
			clean = append(clean, token)
		}
	}
	b.tokens = append(clean, text)
}

// DeleteLast records a snapshot and removes the trailing token.
// Safe no-op on the token list when already empty.
func (b *Buffer) DeleteLast() {
	b.snapshot()
	if len(b.tokens) == 0 {
		return
	}
	b.tokens = b.tokens[:len(b.tokens)-1]
}

// ClearAll records a snapshot and empties the sentence.
func (b *Buffer) ClearAll() {
	b.snapshot()
	b.tokens = nil
}

// Undo restores the most recent snapshot, consuming it. Repeated calls walk
// further back; there is no redo. Returns false when no history remains.
func (b *Buffer) Undo() bool {
	if len(b.history) == 0 {
		return false
	}
	last := len(b.history) - 1
	b.tokens = b.history[last]
	b.history = b.history[:last]
	return true
}

// SetFromText replaces the token sequence wholesale from edited free text,
// splitting on single spaces. Does not push history: text-field edits and
// keyboard input rewrite the sentence in place.
func (b *Buffer) SetFromText(text string) {
	if text == "" {
		b.tokens = nil
		return
	}
	b.tokens = strings.Split(text, " ")
}

// Virtual keyboard control keys.
const (
	KeySpace     = "SPACE"
	KeyBackspace = "BACKSPACE"
)

// VirtualKeyPress applies one on-screen keyboard edit to the joined text and
// re-splits it through SetFromText semantics. No history push.
func (b *Buffer) VirtualKeyPress(key string) {
	text := b.Text()
	switch key {
	case KeyBackspace:
		if runes := []rune(text); len(runes) > 0 {
			text = string(runes[:len(runes)-1])
		}
	case KeySpace:
		text += " "
	default:
		text += key
	}
	b.SetFromText(text)
}
