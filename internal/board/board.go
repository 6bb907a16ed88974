// Package board coordinates the communication board: category state, the
// sentence being composed, settings, and the speech side effects behind them.
package board

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/voxpad/voxpad/internal/audio"
	"github.com/voxpad/voxpad/internal/content"
	"github.com/voxpad/voxpad/internal/fsm"
	"github.com/voxpad/voxpad/internal/i18n"
	"github.com/voxpad/voxpad/internal/ipc"
	"github.com/voxpad/voxpad/internal/sentence"
	"github.com/voxpad/voxpad/internal/settings"
	"github.com/voxpad/voxpad/internal/speech"
	"github.com/voxpad/voxpad/internal/store"
)

const (
	blobSettings   = "settings"
	blobCategories = "categories"
)

// DefaultCategoryColor is applied when add-category carries no color.
const DefaultCategoryColor = "#6366f1"

var (
	ErrBusy         = errors.New("speech already in progress")
	ErrWrongPIN     = errors.New("incorrect PIN")
	ErrEmptySpeech  = errors.New("nothing to speak")
	ErrNotRecording = errors.New("no recording in progress")
)

// Player renders PCM and the attention chime.
type Player interface {
	Play(ctx context.Context, pcm []byte, sampleRate int, rate float64) error
	Chime(ctx context.Context) error
}

// noopPlayer preserves board flow when no audio output is wired.
type noopPlayer struct{}

func (noopPlayer) Play(context.Context, []byte, int, float64) error { return nil }
func (noopPlayer) Chime(context.Context) error                      { return nil }

// Recording is one in-progress memo capture.
type Recording interface {
	Stop() ([]byte, error)
}

// Recorder captures memo audio from the microphone.
type Recorder interface {
	Start(ctx context.Context) (Recording, error)
}

// BlobStore persists the settings and category blobs.
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
}

// noopSynthesizer preserves board flow when no synthesis backend is wired.
type noopSynthesizer struct{}

func (noopSynthesizer) Synthesize(context.Context, string, string) (speech.Clip, error) {
	return speech.Clip{}, errors.New("speech synthesis is not configured")
}

// Board owns all mutable board state behind one mutex. IPC connections are
// served concurrently; every command locks, mutates, persists, unlocks.
type Board struct {
	logger    *slog.Logger
	synth     speech.Synthesizer
	player    Player
	recorder  Recorder
	store     BlobStore
	templates []content.Category

	mu        sync.Mutex
	state     fsm.State
	settings  settings.Settings
	cats      []content.Category
	buffer    *sentence.Buffer
	open      string
	kiosk     bool
	recording Recording
	recSlot   int
}

// New constructs a board with safe fallbacks for missing collaborators.
func New(logger *slog.Logger, synth speech.Synthesizer, player Player, recorder Recorder, blobs BlobStore) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	if synth == nil {
		synth = noopSynthesizer{}
	}
	if player == nil {
		player = noopPlayer{}
	}

	return &Board{
		logger:    logger,
		synth:     synth,
		player:    player,
		recorder:  recorder,
		store:     blobs,
		templates: content.Templates(),
		state:     fsm.StateIdle,
		buffer:    sentence.NewBuffer(),
	}
}

// Start loads persisted settings and categories, reconciles the category
// list against the current settings, and writes the result back.
func (b *Board) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.settings = b.loadSettings(ctx)
	b.cats = b.loadCategories(ctx)
	b.cats = content.Reconcile(b.templates, b.cats, b.settings)

	if err := b.persistCategories(ctx); err != nil {
		return err
	}
	b.logger.Info("board ready",
		"categories", len(b.cats),
		"language", string(b.settings.Language),
		"voice", b.settings.VoiceID,
	)
	return nil
}

func (b *Board) loadSettings(ctx context.Context) settings.Settings {
	data, err := b.store.Get(ctx, blobSettings)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		b.logger.Warn("read settings blob failed, using defaults", "error", err)
	}

	s, warnings := settings.Decode(data)
	for _, w := range warnings {
		b.logger.Warn("settings repaired", "warning", w.Message)
	}
	return s
}

func (b *Board) loadCategories(ctx context.Context) []content.Category {
	data, err := b.store.Get(ctx, blobCategories)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.logger.Warn("read categories blob failed, using defaults", "error", err)
		}
		return content.CloneAll(b.templates)
	}

	var cats []content.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		b.logger.Warn("categories blob is malformed, using defaults", "error", err)
		return content.CloneAll(b.templates)
	}
	if len(cats) == 0 {
		return content.CloneAll(b.templates)
	}
	return cats
}

func (b *Board) persistCategories(ctx context.Context) error {
	data, err := json.Marshal(b.cats)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := b.store.Put(ctx, blobCategories, data); err != nil {
		return fmt.Errorf("persist categories: %w", err)
	}
	return nil
}

func (b *Board) persistSettings(ctx context.Context) error {
	data, err := settings.Encode(b.settings)
	if err != nil {
		return err
	}
	if err := b.store.Put(ctx, blobSettings, data); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// transition applies one FSM event to the board state. Callers hold b.mu.
func (b *Board) transition(event fsm.Event) error {
	next, err := fsm.Transition(b.state, event)
	if err != nil {
		return err
	}
	b.state = next
	return nil
}

// toErrorAndReset transitions to error and back to idle best-effort.
func (b *Board) toErrorAndReset() {
	_ = b.transition(fsm.EventFail)
	_ = b.transition(fsm.EventReset)
}

// Handle serves one IPC command against the board.
func (b *Board) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return b.status()
	case "categories":
		return b.categoriesResponse()
	case "voices":
		return b.voicesResponse()
	case "languages":
		return b.languagesResponse()
	case "open":
		return b.openCategory(req.Category)
	case "back":
		return b.closeCategory()
	case "word":
		return b.tapWord(ctx, req)
	case "speak":
		return b.speakSentence(ctx)
	case "say":
		return b.sayText(ctx, req.Text)
	case "undo":
		return b.bufferOp(func() { b.buffer.Undo() })
	case "delete":
		return b.bufferOp(func() { b.buffer.DeleteLast() })
	case "clear":
		return b.bufferOp(func() { b.buffer.ClearAll() })
	case "set-text":
		return b.bufferOp(func() { b.buffer.SetFromText(req.Text) })
	case "key":
		return b.bufferOp(func() { b.buffer.VirtualKeyPress(req.Key) })
	case "reorder":
		return b.reorder(ctx, req.From, req.To)
	case "add-category":
		return b.addCategory(ctx, req)
	case "add-word":
		return b.addWord(ctx, req)
	case "settings-get":
		return b.settingsGet(req.PIN)
	case "settings-save":
		return b.settingsSave(ctx, req)
	case "kiosk-enter":
		return b.kioskEnter()
	case "kiosk-exit":
		return b.kioskExit(req.PIN)
	case "chime":
		return b.chime(ctx)
	case "record-start":
		return b.recordStart(ctx)
	case "record-stop":
		return b.recordStop(ctx, req.Slot)
	default:
		return ipc.Response{OK: false, State: string(b.currentState()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (b *Board) currentState() fsm.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Board) status() ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ipc.Response{
		OK:       true,
		State:    string(b.state),
		Sentence: b.buffer.Text(),
		CanUndo:  b.buffer.CanUndo(),
		Open:     b.open,
		Kiosk:    b.kiosk,
	}
}

func (b *Board) categoriesResponse() ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := json.Marshal(b.cats)
	if err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("encode categories: %v", err)}
	}
	return ipc.Response{OK: true, State: string(b.state), Categories: data}
}

// voicesResponse lists the selectable voice catalog for frontends.
func (b *Board) voicesResponse() ipc.Response {
	data, err := json.Marshal(speech.Voices())
	if err != nil {
		return ipc.Response{OK: false, State: string(b.currentState()), Error: fmt.Sprintf("encode voices: %v", err)}
	}
	return ipc.Response{OK: true, State: string(b.currentState()), Voices: data}
}

// languagesResponse lists the supported languages and their voice locales.
func (b *Board) languagesResponse() ipc.Response {
	data, err := json.Marshal(i18n.Supported())
	if err != nil {
		return ipc.Response{OK: false, State: string(b.currentState()), Error: fmt.Sprintf("encode languages: %v", err)}
	}
	return ipc.Response{OK: true, State: string(b.currentState()), Languages: data}
}

func (b *Board) openCategory(name string) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.cats {
		if c.Name == name {
			b.open = name
			// The category phrase goes into the sentence verbatim, untranslated.
			if c.Phrase != "" {
				b.buffer.AppendToken(c.Phrase)
			}
			return ipc.Response{
				OK:       true,
				State:    string(b.state),
				Open:     b.open,
				Sentence: b.buffer.Text(),
				CanUndo:  b.buffer.CanUndo(),
			}
		}
	}
	return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("unknown category: %s", name)}
}

func (b *Board) closeCategory() ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = ""
	return ipc.Response{OK: true, State: string(b.state)}
}

// tapWord appends the word's spoken form to the sentence, except memo words
// with a recording, which play back immediately instead.
func (b *Board) tapWord(ctx context.Context, req ipc.Request) ipc.Response {
	b.mu.Lock()

	word, ok := b.findWordLocked(req.Icon, req.Label)
	if !ok {
		resp := ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("unknown word: %s %s", req.Icon, req.Label)}
		b.mu.Unlock()
		return resp
	}

	if word.Recording != "" {
		if err := b.transition(fsm.EventPlay); err != nil {
			resp := ipc.Response{OK: false, State: string(b.state), Error: ErrBusy.Error()}
			b.mu.Unlock()
			return resp
		}
		recording := word.Recording
		b.mu.Unlock()
		return b.playMemo(ctx, recording)
	}

	b.buffer.AppendToken(word.SpokenText())
	resp := ipc.Response{OK: true, State: string(b.state), Sentence: b.buffer.Text(), CanUndo: b.buffer.CanUndo()}
	b.mu.Unlock()
	return resp
}

// findWordLocked searches the open category first, then the whole board, so
// clients that track the open category themselves still resolve words.
func (b *Board) findWordLocked(icon, label string) (content.Word, bool) {
	match := func(c content.Category) (content.Word, bool) {
		for _, w := range c.Words {
			if w.Icon == icon && (label == "" || w.Label == label) {
				return w, true
			}
		}
		return content.Word{}, false
	}

	if b.open != "" {
		for _, c := range b.cats {
			if c.Name == b.open {
				if w, ok := match(c); ok {
					return w, true
				}
			}
		}
	}
	for _, c := range b.cats {
		if w, ok := match(c); ok {
			return w, true
		}
	}
	return content.Word{}, false
}

func (b *Board) playMemo(ctx context.Context, recording string) ipc.Response {
	raw, err := base64.StdEncoding.DecodeString(recording)
	var pcm []byte
	var sampleRate int
	if err == nil {
		pcm, sampleRate, err = audio.DecodeWAV(raw)
	}
	if err != nil {
		b.mu.Lock()
		b.toErrorAndReset()
		resp := ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("decode memo audio: %v", err)}
		b.mu.Unlock()
		return resp
	}

	playErr := b.player.Play(ctx, pcm, sampleRate, 1.0)

	b.mu.Lock()
	defer b.mu.Unlock()
	if playErr != nil {
		b.toErrorAndReset()
		return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("play memo: %v", playErr)}
	}
	_ = b.transition(fsm.EventPlayed)
	return ipc.Response{OK: true, State: string(b.state), Message: "memo played"}
}

func (b *Board) speakSentence(ctx context.Context) ipc.Response {
	b.mu.Lock()
	text := b.buffer.Text()
	b.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return ipc.Response{OK: false, State: string(b.currentState()), Error: ErrEmptySpeech.Error()}
	}
	return b.sayText(ctx, text)
}

// sayText runs the full synthesize-then-play flow synchronously. The state
// machine keeps concurrent speak requests out while this runs.
func (b *Board) sayText(ctx context.Context, text string) ipc.Response {
	if strings.TrimSpace(text) == "" {
		return ipc.Response{OK: false, State: string(b.currentState()), Error: ErrEmptySpeech.Error()}
	}

	b.mu.Lock()
	if err := b.transition(fsm.EventSpeak); err != nil {
		resp := ipc.Response{OK: false, State: string(b.state), Error: ErrBusy.Error()}
		b.mu.Unlock()
		return resp
	}
	voiceID := b.settings.VoiceID
	b.mu.Unlock()

	clip, err := b.synth.Synthesize(ctx, text, voiceID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.logger.Error("speech synthesis failed", "error", err)
		b.toErrorAndReset()
		return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("synthesize: %v", err)}
	}
	_ = b.transition(fsm.EventSynthesized)

	b.mu.Unlock()
	playErr := b.player.Play(ctx, clip.PCM, speech.SampleRate, clip.Rate)
	b.mu.Lock()

	if playErr != nil {
		b.logger.Error("speech playback failed", "error", playErr)
		b.toErrorAndReset()
		return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("play: %v", playErr)}
	}
	_ = b.transition(fsm.EventPlayed)
	b.logger.Info("spoke", "chars", len(text), "voice", voiceID)
	return ipc.Response{OK: true, State: string(b.state), Sentence: text, Message: "spoken"}
}

func (b *Board) bufferOp(op func()) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	op()
	return ipc.Response{OK: true, State: string(b.state), Sentence: b.buffer.Text(), CanUndo: b.buffer.CanUndo()}
}

// reorder permutes whichever grid is showing: the category list at the top
// level, or the open category's words. Either way it is a pure move of one
// entry, persisted immediately.
func (b *Board) reorder(ctx context.Context, from, to int) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open == "" {
		if from < 0 || from >= len(b.cats) || to < 0 || to >= len(b.cats) {
			return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("reorder out of range: %d -> %d", from, to)}
		}
		b.cats = moveEntry(b.cats, from, to)
		if err := b.persistCategories(ctx); err != nil {
			return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: string(b.state)}
	}

	for i := range b.cats {
		if b.cats[i].Name != b.open {
			continue
		}
		words := b.cats[i].Words
		if from < 0 || from >= len(words) || to < 0 || to >= len(words) {
			return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("reorder out of range: %d -> %d", from, to)}
		}
		b.cats[i].Words = moveEntry(words, from, to)

		if err := b.persistCategories(ctx); err != nil {
			return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: string(b.state)}
	}
	return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("unknown category: %s", b.open)}
}

// moveEntry removes the entry at from and re-inserts it at to, preserving the
// relative order of everything else.
func moveEntry[T any](items []T, from, to int) []T {
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	return append(items[:to], append([]T{item}, items[to:]...)...)
}

func (b *Board) addCategory(ctx context.Context, req ipc.Request) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := strings.TrimSpace(req.Text)
	if name == "" || req.Icon == "" {
		return ipc.Response{OK: false, State: string(b.state), Error: "category needs a name and an icon"}
	}
	for _, c := range b.cats {
		if c.Name == name {
			return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("category already exists: %s", name)}
		}
	}

	color := req.Color
	if color == "" {
		color = DefaultCategoryColor
	}
	b.cats = append(b.cats, content.Category{Name: name, Icon: req.Icon, Color: color})

	if err := b.persistCategories(ctx); err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
	}
	return ipc.Response{OK: true, State: string(b.state)}
}

func (b *Board) addWord(ctx context.Context, req ipc.Request) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	target := req.Category
	if target == "" {
		target = b.open
	}
	label := strings.TrimSpace(req.Text)
	if target == "" || label == "" || req.Icon == "" {
		return ipc.Response{OK: false, State: string(b.state), Error: "word needs a category, a label, and an icon"}
	}

	for i := range b.cats {
		if b.cats[i].Name != target {
			continue
		}
		b.cats[i].Words = append(b.cats[i].Words, content.Word{Label: label, Icon: req.Icon})

		if err := b.persistCategories(ctx); err != nil {
			return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
		}
		return ipc.Response{OK: true, State: string(b.state)}
	}
	return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("unknown category: %s", target)}
}

// settingsGet returns the settings blob. Locked settings require the PIN:
// the blob carries the PIN itself.
func (b *Board) settingsGet(pin string) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.settings.SettingsLocked() && !b.settings.PINMatches(pin) {
		return ipc.Response{OK: false, State: string(b.state), Error: ErrWrongPIN.Error()}
	}

	data, err := settings.Encode(b.settings)
	if err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
	}
	return ipc.Response{OK: true, State: string(b.state), Settings: data}
}

// settingsSave replaces the settings and re-reconciles the board content so
// language, profile, and memo changes land immediately.
func (b *Board) settingsSave(ctx context.Context, req ipc.Request) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.settings.SettingsLocked() && !b.settings.PINMatches(req.PIN) {
		return ipc.Response{OK: false, State: string(b.state), Error: ErrWrongPIN.Error()}
	}

	next, warnings := settings.Decode(req.Settings)
	for _, w := range warnings {
		b.logger.Warn("settings repaired", "warning", w.Message)
	}
	b.settings = next
	b.cats = content.Reconcile(b.templates, b.cats, b.settings)
	b.logger.Info("settings saved",
		"language", string(next.Language),
		"voiceLocale", i18n.VoiceLocale(next.Language),
		"voice", next.VoiceID,
	)

	if err := b.persistSettings(ctx); err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
	}
	if err := b.persistCategories(ctx); err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
	}
	return ipc.Response{OK: true, State: string(b.state)}
}

func (b *Board) kioskEnter() ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kiosk = true
	return ipc.Response{OK: true, State: string(b.state), Kiosk: true}
}

func (b *Board) kioskExit(pin string) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.settings.KioskExitLocked() && !b.settings.PINMatches(pin) {
		return ipc.Response{OK: false, State: string(b.state), Kiosk: b.kiosk, Error: ErrWrongPIN.Error()}
	}
	b.kiosk = false
	return ipc.Response{OK: true, State: string(b.state), Kiosk: false}
}

func (b *Board) chime(ctx context.Context) ipc.Response {
	if err := b.player.Chime(ctx); err != nil {
		return ipc.Response{OK: false, State: string(b.currentState()), Error: fmt.Sprintf("chime: %v", err)}
	}
	return ipc.Response{OK: true, State: string(b.currentState()), Message: "chimed"}
}

func (b *Board) recordStart(ctx context.Context) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.recorder == nil {
		return ipc.Response{OK: false, State: string(b.state), Error: "no recorder is configured"}
	}
	if err := b.transition(fsm.EventRecord); err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: ErrBusy.Error()}
	}

	rec, err := b.recorder.Start(ctx)
	if err != nil {
		b.toErrorAndReset()
		return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("start recording: %v", err)}
	}
	b.recording = rec
	return ipc.Response{OK: true, State: string(b.state), Message: "recording"}
}

// recordStop finishes the capture and binds it to a memo slot: 1 and 2 are
// the numbered memos, 3 is the starred important memo.
func (b *Board) recordStop(ctx context.Context, slot int) ipc.Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.recording == nil {
		return ipc.Response{OK: false, State: string(b.state), Error: ErrNotRecording.Error()}
	}

	pcm, err := b.recording.Stop()
	b.recording = nil
	if err != nil {
		b.toErrorAndReset()
		return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("stop recording: %v", err)}
	}
	_ = b.transition(fsm.EventRecorded)

	encoded := base64.StdEncoding.EncodeToString(audio.EncodeWAV(pcm, audio.RecordSampleRate))
	switch slot {
	case 1:
		b.settings.Memo1Audio = encoded
	case 2:
		b.settings.Memo2Audio = encoded
	case 3:
		b.settings.ImportantMemoAudio = encoded
	default:
		return ipc.Response{OK: false, State: string(b.state), Error: fmt.Sprintf("unknown memo slot: %d", slot)}
	}

	b.cats = content.Reconcile(b.templates, b.cats, b.settings)
	if err := b.persistSettings(ctx); err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
	}
	if err := b.persistCategories(ctx); err != nil {
		return ipc.Response{OK: false, State: string(b.state), Error: err.Error()}
	}
	return ipc.Response{OK: true, State: string(b.state), Message: fmt.Sprintf("memo %d saved", slot)}
}
