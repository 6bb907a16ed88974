package board

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/voxpad/voxpad/internal/audio"
	"github.com/voxpad/voxpad/internal/content"
	"github.com/voxpad/voxpad/internal/i18n"
	"github.com/voxpad/voxpad/internal/ipc"
	"github.com/voxpad/voxpad/internal/speech"
	"github.com/voxpad/voxpad/internal/store"
)

type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{m: map[string][]byte{}}
}

func (s *memStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.m[name]
	if !ok {
		return nil, fmt.Errorf("blob %q: %w", name, store.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *memStore) Put(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[name] = append([]byte(nil), data...)
	return nil
}

type fakeSynth struct {
	mu     sync.Mutex
	texts  []string
	voices []string
	clip   speech.Clip
	err    error
	block  chan struct{}
}

func (f *fakeSynth) Synthesize(_ context.Context, text, voiceID string) (speech.Clip, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.voices = append(f.voices, voiceID)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.clip, f.err
}

type playCall struct {
	pcm        []byte
	sampleRate int
	rate       float64
}

type fakePlayer struct {
	mu     sync.Mutex
	plays  []playCall
	chimes int
	err    error
}

func (f *fakePlayer) Play(_ context.Context, pcm []byte, sampleRate int, rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, playCall{pcm: append([]byte(nil), pcm...), sampleRate: sampleRate, rate: rate})
	return f.err
}

func (f *fakePlayer) Chime(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chimes++
	return f.err
}

type fakeRecording struct {
	pcm []byte
}

func (f *fakeRecording) Stop() ([]byte, error) {
	return f.pcm, nil
}

type fakeRecorder struct {
	pcm []byte
}

func (f *fakeRecorder) Start(context.Context) (Recording, error) {
	return &fakeRecording{pcm: f.pcm}, nil
}

type fixture struct {
	board  *Board
	store  *memStore
	synth  *fakeSynth
	player *fakePlayer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs := newMemStore()
	synth := &fakeSynth{clip: speech.Clip{PCM: []byte{1, 2, 3, 4}, Rate: 1.0}}
	player := &fakePlayer{}
	b := New(nil, synth, player, &fakeRecorder{pcm: []byte{9, 9}}, blobs)
	require.NoError(t, b.Start(context.Background()))
	return &fixture{board: b, store: blobs, synth: synth, player: player}
}

func (f *fixture) handle(t *testing.T, req ipc.Request) ipc.Response {
	t.Helper()
	return f.board.Handle(context.Background(), req)
}

func (f *fixture) mustHandle(t *testing.T, req ipc.Request) ipc.Response {
	t.Helper()
	resp := f.handle(t, req)
	require.True(t, resp.OK, "command %s failed: %s", req.Command, resp.Error)
	return resp
}

func categoriesOf(t *testing.T, resp ipc.Response) []content.Category {
	t.Helper()
	var cats []content.Category
	require.NoError(t, json.Unmarshal(resp.Categories, &cats))
	return cats
}

func TestStartSeedsDefaultBoard(t *testing.T) {
	f := newFixture(t)

	resp := f.mustHandle(t, ipc.Request{Command: "categories"})
	cats := categoriesOf(t, resp)
	require.NotEmpty(t, cats)
	require.Equal(t, "Basics", cats[0].Name)

	// Seeding persisted the category list.
	_, err := f.store.Get(context.Background(), "categories")
	require.NoError(t, err)
}

func TestStartAppliesStoredSettings(t *testing.T) {
	blobs := newMemStore()
	require.NoError(t, blobs.Put(context.Background(), "settings", []byte(`{"language":"es","userName":"Jamie"}`)))

	b := New(nil, &fakeSynth{}, &fakePlayer{}, nil, blobs)
	require.NoError(t, b.Start(context.Background()))

	resp := b.Handle(context.Background(), ipc.Request{Command: "categories"})
	require.True(t, resp.OK)
	cats := categoriesOf(t, resp)

	var infoName string
	for _, c := range cats {
		if c.Icon == "ℹ️" {
			infoName = c.Name
		}
	}
	require.Equal(t, "Mi Información", infoName)
}

func TestWordAppendsSpokenText(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "open", Category: "Basics"})
	resp := f.mustHandle(t, ipc.Request{Command: "word", Icon: "🆘", Label: "Help"})
	require.Equal(t, "I need help", resp.Sentence)

	resp = f.mustHandle(t, ipc.Request{Command: "word", Icon: "🙏", Label: "Please"})
	require.Equal(t, "I need help Please", resp.Sentence)
	require.True(t, resp.CanUndo)
}

func TestWordUnknownFails(t *testing.T) {
	f := newFixture(t)
	resp := f.handle(t, ipc.Request{Command: "word", Icon: "🦄", Label: "Unicorn"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown word")
}

func TestSpeakEmptySentenceFails(t *testing.T) {
	f := newFixture(t)
	resp := f.handle(t, ipc.Request{Command: "speak"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "nothing to speak")
}

func TestSpeakSynthesizesAndPlays(t *testing.T) {
	f := newFixture(t)
	f.synth.clip = speech.Clip{PCM: []byte{7, 7}, Rate: 1.15}

	f.mustHandle(t, ipc.Request{Command: "set-text", Text: "I need help"})
	resp := f.mustHandle(t, ipc.Request{Command: "speak"})
	require.Equal(t, "idle", resp.State)

	require.Equal(t, []string{"I need help"}, f.synth.texts)
	require.Equal(t, []string{"Kore"}, f.synth.voices)

	require.Len(t, f.player.plays, 1)
	require.Equal(t, []byte{7, 7}, f.player.plays[0].pcm)
	require.Equal(t, speech.SampleRate, f.player.plays[0].sampleRate)
	require.InDelta(t, 1.15, f.player.plays[0].rate, 1e-9)
}

func TestSayRejectsConcurrentSpeech(t *testing.T) {
	f := newFixture(t)
	f.synth.block = make(chan struct{})

	done := make(chan ipc.Response, 1)
	go func() {
		done <- f.board.Handle(context.Background(), ipc.Request{Command: "say", Text: "Hello"})
	}()

	require.Eventually(t, func() bool {
		resp := f.handle(t, ipc.Request{Command: "status"})
		return resp.State == "synthesizing"
	}, time.Second, 5*time.Millisecond)

	resp := f.handle(t, ipc.Request{Command: "say", Text: "Second"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "speech already in progress")

	close(f.synth.block)
	first := <-done
	require.True(t, first.OK)
	require.Equal(t, "idle", first.State)
}

func TestSpeechFailureRecoversToIdle(t *testing.T) {
	f := newFixture(t)
	f.synth.err = fmt.Errorf("quota exceeded")

	resp := f.handle(t, ipc.Request{Command: "say", Text: "Hello"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "synthesize")

	status := f.mustHandle(t, ipc.Request{Command: "status"})
	require.Equal(t, "idle", status.State, "board recovers after a failed utterance")
}

func TestBufferCommands(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "set-text", Text: "I want water"})
	resp := f.mustHandle(t, ipc.Request{Command: "key", Key: "BACKSPACE"})
	require.Equal(t, "I want wate", resp.Sentence)

	resp = f.mustHandle(t, ipc.Request{Command: "delete"})
	require.Equal(t, "I want", resp.Sentence)

	resp = f.mustHandle(t, ipc.Request{Command: "undo"})
	require.Equal(t, "I want wate", resp.Sentence)

	resp = f.mustHandle(t, ipc.Request{Command: "clear"})
	require.Empty(t, resp.Sentence)
}

func TestOpenAndBack(t *testing.T) {
	f := newFixture(t)

	resp := f.mustHandle(t, ipc.Request{Command: "open", Category: "Feelings"})
	require.Equal(t, "Feelings", resp.Open)

	status := f.mustHandle(t, ipc.Request{Command: "status"})
	require.Equal(t, "Feelings", status.Open)

	f.mustHandle(t, ipc.Request{Command: "back"})
	status = f.mustHandle(t, ipc.Request{Command: "status"})
	require.Empty(t, status.Open)

	resp = f.handle(t, ipc.Request{Command: "open", Category: "Nope"})
	require.False(t, resp.OK)
}

func TestVoicesQueryListsCatalog(t *testing.T) {
	f := newFixture(t)

	resp := f.mustHandle(t, ipc.Request{Command: "voices"})
	var voices []speech.Voice
	require.NoError(t, json.Unmarshal(resp.Voices, &voices))
	require.Len(t, voices, 7)

	ids := make([]string, 0, len(voices))
	for _, v := range voices {
		ids = append(ids, v.ID)
	}
	require.Contains(t, ids, speech.DefaultVoiceID)
	require.Contains(t, ids, "Girl")
}

func TestLanguagesQueryListsRegistry(t *testing.T) {
	f := newFixture(t)

	resp := f.mustHandle(t, ipc.Request{Command: "languages"})
	var langs []i18n.Info
	require.NoError(t, json.Unmarshal(resp.Languages, &langs))
	require.Len(t, langs, 7)

	locales := make(map[i18n.Language]string, len(langs))
	for _, info := range langs {
		locales[info.Code] = info.VoiceLocale
	}
	require.Equal(t, "en-US", locales[i18n.English])
	require.Equal(t, "fil-PH", locales[i18n.Tagalog])
}

func TestOpenCategoryPhraseJoinsSentence(t *testing.T) {
	f := newFixture(t)

	resp := f.mustHandle(t, ipc.Request{Command: "open", Category: "Attention"})
	require.Equal(t, "Excuse me", resp.Sentence)
	require.True(t, resp.CanUndo)

	resp = f.mustHandle(t, ipc.Request{Command: "undo"})
	require.Empty(t, resp.Sentence)
}

func TestReorderCategoriesMovesOnePreservingTheRest(t *testing.T) {
	f := newFixture(t)

	before := categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	require.Greater(t, len(before), 3)

	f.mustHandle(t, ipc.Request{Command: "reorder", From: 2, To: 0})

	after := categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	require.Len(t, after, len(before))
	require.Equal(t, before[2].Name, after[0].Name)

	rest := make([]string, 0, len(after)-1)
	for _, c := range after[1:] {
		rest = append(rest, c.Name)
	}
	want := make([]string, 0, len(before)-1)
	for i, c := range before {
		if i != 2 {
			want = append(want, c.Name)
		}
	}
	require.Equal(t, want, rest)

	resp := f.handle(t, ipc.Request{Command: "reorder", From: -1, To: 0})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "out of range")
}

func TestReorderPersists(t *testing.T) {
	f := newFixture(t)
	f.mustHandle(t, ipc.Request{Command: "open", Category: "Basics"})

	before := categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	first := before[0].Words[0].Label

	f.mustHandle(t, ipc.Request{Command: "reorder", From: 0, To: 2})

	after := categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	require.Equal(t, first, after[0].Words[2].Label)

	resp := f.handle(t, ipc.Request{Command: "reorder", From: 0, To: 99})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "out of range")
}

func TestAddCategoryAndWord(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "add-category", Text: "My Jokes", Icon: "🤡"})
	cats := categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	added := cats[len(cats)-1]
	require.Equal(t, "My Jokes", added.Name)
	require.Equal(t, DefaultCategoryColor, added.Color)

	resp := f.handle(t, ipc.Request{Command: "add-category", Text: "My Jokes", Icon: "🤡"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "already exists")

	f.mustHandle(t, ipc.Request{Command: "add-word", Category: "My Jokes", Text: "Knock knock", Icon: "🚪"})
	cats = categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	added = cats[len(cats)-1]
	require.Len(t, added.Words, 1)
	require.Equal(t, "Knock knock", added.Words[0].Label)
}

func TestCustomWordSurvivesSettingsChange(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "open", Category: "Feelings"})
	f.mustHandle(t, ipc.Request{Command: "add-word", Text: "Silly", Icon: "🤪"})

	f.mustHandle(t, ipc.Request{Command: "settings-save", Settings: json.RawMessage(`{"language":"fr"}`)})

	cats := categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	var feelings content.Category
	for _, c := range cats {
		if c.Icon == "😊" {
			feelings = c
		}
	}
	last := feelings.Words[len(feelings.Words)-1]
	require.Equal(t, "Silly", last.Label)
}

func TestSettingsSavePINGate(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{
		Command:  "settings-save",
		Settings: json.RawMessage(`{"pinCode":"1234","lockSettings":true}`),
	})

	resp := f.handle(t, ipc.Request{
		Command:  "settings-save",
		Settings: json.RawMessage(`{"language":"es"}`),
	})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "incorrect PIN")

	resp = f.handle(t, ipc.Request{
		Command:  "settings-save",
		PIN:      "9999",
		Settings: json.RawMessage(`{"language":"es"}`),
	})
	require.False(t, resp.OK)

	f.mustHandle(t, ipc.Request{
		Command:  "settings-save",
		PIN:      "1234",
		Settings: json.RawMessage(`{"language":"es","pinCode":"1234","lockSettings":true}`),
	})

	// settings-get is gated too; the blob carries the PIN.
	got := f.handle(t, ipc.Request{Command: "settings-get"})
	require.False(t, got.OK)
	require.Contains(t, got.Error, "incorrect PIN")

	got = f.mustHandle(t, ipc.Request{Command: "settings-get", PIN: "1234"})
	require.Contains(t, string(got.Settings), `"language":"es"`)
}

func TestSettingsSaveReconcilesLanguage(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "settings-save", Settings: json.RawMessage(`{"language":"de"}`)})

	cats := categoriesOf(t, f.mustHandle(t, ipc.Request{Command: "categories"}))
	var memoName string
	for _, c := range cats {
		if c.Icon == "💬" {
			memoName = c.Name
		}
	}
	require.Equal(t, "Gespeicherte Memos", memoName)
}

func TestKioskExitRequiresPIN(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "settings-save", Settings: json.RawMessage(`{"pinCode":"4321"}`)})
	f.mustHandle(t, ipc.Request{Command: "kiosk-enter"})

	status := f.mustHandle(t, ipc.Request{Command: "status"})
	require.True(t, status.Kiosk)

	resp := f.handle(t, ipc.Request{Command: "kiosk-exit"})
	require.False(t, resp.OK)
	require.True(t, resp.Kiosk)

	resp = f.mustHandle(t, ipc.Request{Command: "kiosk-exit", PIN: "4321"})
	require.False(t, resp.Kiosk)
}

func TestKioskExitWithoutPINConfigured(t *testing.T) {
	f := newFixture(t)
	f.mustHandle(t, ipc.Request{Command: "kiosk-enter"})
	resp := f.mustHandle(t, ipc.Request{Command: "kiosk-exit"})
	require.False(t, resp.Kiosk)
}

func TestChime(t *testing.T) {
	f := newFixture(t)
	f.mustHandle(t, ipc.Request{Command: "chime"})
	require.Equal(t, 1, f.player.chimes)
}

func TestRecordMemoAndPlayBack(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "record-start"})
	status := f.mustHandle(t, ipc.Request{Command: "status"})
	require.Equal(t, "recording", status.State)

	f.mustHandle(t, ipc.Request{Command: "record-stop", Slot: 1})
	status = f.mustHandle(t, ipc.Request{Command: "status"})
	require.Equal(t, "idle", status.State)

	// The memo word now carries the recording and plays it on tap.
	resp := f.mustHandle(t, ipc.Request{Command: "word", Icon: "📝", Label: "Memo 1"})
	require.Equal(t, "memo played", resp.Message)

	require.Len(t, f.player.plays, 1)
	require.Equal(t, []byte{9, 9}, f.player.plays[0].pcm)
	require.Equal(t, audio.RecordSampleRate, f.player.plays[0].sampleRate)
	require.InDelta(t, 1.0, f.player.plays[0].rate, 1e-9)

	// And it survived into the settings blob, framed as wav.
	got := f.mustHandle(t, ipc.Request{Command: "settings-get"})
	wantBlob := base64.StdEncoding.EncodeToString(audio.EncodeWAV([]byte{9, 9}, audio.RecordSampleRate))
	require.Contains(t, string(got.Settings), wantBlob)
}

func TestRecordStopWithoutStartFails(t *testing.T) {
	f := newFixture(t)
	resp := f.handle(t, ipc.Request{Command: "record-stop", Slot: 1})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "no recording in progress")
}

func TestUnrecordedMemoWordIsSilentPlaceholder(t *testing.T) {
	f := newFixture(t)

	resp := f.mustHandle(t, ipc.Request{Command: "word", Icon: "⭐", Label: "Important"})
	require.Empty(t, f.player.plays, "no recording, nothing plays")
	require.NotEmpty(t, resp.Sentence, "falls back to appending the label")
}

func TestBoardStateSurvivesRestart(t *testing.T) {
	f := newFixture(t)

	f.mustHandle(t, ipc.Request{Command: "add-category", Text: "My Jokes", Icon: "🤡", Color: "#123456"})
	f.mustHandle(t, ipc.Request{Command: "settings-save", Settings: json.RawMessage(`{"language":"es","userName":"Jamie"}`)})

	reopened := New(nil, &fakeSynth{}, &fakePlayer{}, nil, f.store)
	require.NoError(t, reopened.Start(context.Background()))

	resp := reopened.Handle(context.Background(), ipc.Request{Command: "categories"})
	require.True(t, resp.OK)
	cats := categoriesOf(t, resp)

	var custom, info *content.Category
	for i := range cats {
		switch cats[i].Icon {
		case "🤡":
			custom = &cats[i]
		case "ℹ️":
			info = &cats[i]
		}
	}
	require.NotNil(t, custom)
	require.Equal(t, "#123456", custom.Color)
	require.NotNil(t, info)
	require.Equal(t, "Mi Información", info.Name)
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	resp := f.handle(t, ipc.Request{Command: "explode"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")
}
