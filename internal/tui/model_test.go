package tui

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kanadrill/internal/kana"
	"github.com/verte-zerg/kanadrill/internal/scheduler"
	"github.com/verte-zerg/kanadrill/internal/selection"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type harness struct {
	m     *Model
	clock *fakeClock
	store *selection.Store
	path  string
}

func newHarness(t *testing.T, state *selection.State) harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "katakana.ini")
	store := selection.NewStore(selection.NewFilePersister(path), logger)
	clock := &fakeClock{now: time.Unix(0, 0)}
	sched := scheduler.New(state.EnabledCharacters,
		scheduler.WithRand(rand.New(rand.NewSource(9))),
		scheduler.WithClock(clock))
	return harness{m: NewModel(state, store, sched, logger), clock: clock, store: store, path: path}
}

func onlyGlyphs(t *testing.T, glyphs ...string) *selection.State {
	t.Helper()
	state := selection.NewState()
	state.SetAll(false)
	for _, g := range glyphs {
		if err := state.Set(g, true); err != nil {
			t.Fatalf("set %s: %v", g, err)
		}
	}
	return state
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelPromptsFirstCharacter(t *testing.T) {
	h := newHarness(t, onlyGlyphs(t, "カ"))
	ch, ok := h.m.sched.Current()
	if !ok || ch.Glyph != "カ" {
		t.Fatalf("expected カ prompt, got %+v %v", ch, ok)
	}
	if !strings.Contains(h.m.View(), "カ") {
		t.Fatalf("view should show the glyph")
	}
}

func TestCorrectAnswerClearsInput(t *testing.T) {
	h := newHarness(t, onlyGlyphs(t, "カ"))
	h.m.Update(runes("KA"))
	if h.m.input.Value() != "KA" {
		t.Fatalf("expected typed input, got %q", h.m.input.Value())
	}
	h.m.Update(key(tea.KeyEnter))
	if h.m.input.Value() != "" {
		t.Fatalf("expected input cleared after correct answer")
	}
	if h.m.sched.Stats().Correct != 1 {
		t.Fatalf("expected one correct answer")
	}
}

func TestWrongAnswerRevealsThenAdvances(t *testing.T) {
	h := newHarness(t, onlyGlyphs(t, "カ", "キ"))
	first, _ := h.m.sched.Current()

	h.m.input.SetValue("zz")
	_, cmd := h.m.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatalf("expected a reveal timer command")
	}
	if h.m.sched.State() != scheduler.Revealing {
		t.Fatalf("expected revealing, got %s", h.m.sched.State())
	}
	if !strings.Contains(h.m.View(), "Answer: "+first.Romaji) {
		t.Fatalf("view should show the correct answer")
	}

	h.m.Update(runes("x"))
	h.m.Update(key(tea.KeyEnter))
	if h.m.input.Value() != "zz" || h.m.sched.Stats().Missed != 1 {
		t.Fatalf("input must be ignored during reveal")
	}

	ticket := h.m.pending
	h.m.Update(revealExpiredMsg{ticket: ticket})
	if h.m.sched.State() != scheduler.Revealing {
		t.Fatalf("reveal must last the full delay")
	}

	h.clock.now = h.clock.now.Add(scheduler.RevealDelay)
	h.m.Update(revealExpiredMsg{ticket: ticket})
	if h.m.sched.State() != scheduler.Prompting {
		t.Fatalf("expected prompting after delay, got %s", h.m.sched.State())
	}
	second, _ := h.m.sched.Current()
	if second.Glyph == first.Glyph {
		t.Fatalf("expected the other character next")
	}
	if h.m.input.Value() != "" {
		t.Fatalf("expected input cleared on advance")
	}

	prompt := h.m.sched.Prompt()
	h.m.Update(revealExpiredMsg{ticket: ticket})
	if h.m.sched.Prompt() != prompt {
		t.Fatalf("duplicate timer message must not advance again")
	}
}

func TestSettingsCancelsRevealAndSavesOnClose(t *testing.T) {
	h := newHarness(t, selection.NewState())
	h.m.input.SetValue("zz")
	h.m.Update(key(tea.KeyEnter))
	ticket := h.m.pending

	h.m.Update(key(tea.KeyTab))
	if h.m.screen != screenSettings {
		t.Fatalf("expected settings screen")
	}
	h.clock.now = h.clock.now.Add(scheduler.RevealDelay)
	h.m.Update(revealExpiredMsg{ticket: ticket})
	if h.m.sched.State() != scheduler.Revealing {
		t.Fatalf("cancelled reveal must not advance while settings are open")
	}

	// Cursor starts on the Vowels header.
	h.m.Update(key(tea.KeySpace))
	vowels, _ := kana.FindGroup("vowels")
	if h.m.state.GroupEnabled(vowels) {
		t.Fatalf("expected vowels disabled")
	}
	h.m.Update(key(tea.KeyEsc))

	if h.m.screen != screenPractice || h.m.sched.State() != scheduler.Prompting {
		t.Fatalf("expected prompting on practice screen after close")
	}
	ch, _ := h.m.sched.Current()
	if ch.Group == vowels.Name {
		t.Fatalf("disabled group prompted: %s", ch.Glyph)
	}
	loaded := h.store.Load(context.Background())
	if loaded.Enabled("ア") || !loaded.Enabled("カ") {
		t.Fatalf("selection was not persisted on close")
	}
}

func TestSettingsCloseSkipsUnchangedSelection(t *testing.T) {
	h := newHarness(t, selection.NewState())
	h.m.Update(key(tea.KeyTab))
	h.m.Update(key(tea.KeySpace))
	h.m.Update(key(tea.KeySpace))
	h.m.Update(key(tea.KeyEsc))
	if _, err := os.Stat(h.path); !os.IsNotExist(err) {
		t.Fatalf("reverted toggles must not write the selection, stat err=%v", err)
	}

	h.m.Update(key(tea.KeyTab))
	h.m.Update(key(tea.KeySpace))
	h.m.Update(key(tea.KeyEsc))
	if _, err := os.Stat(h.path); err != nil {
		t.Fatalf("changed selection was not written: %v", err)
	}
	if !h.m.saved.Equal(h.m.state) {
		t.Fatalf("saved copy should track the written selection")
	}
	if err := os.Remove(h.path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	h.m.Update(key(tea.KeyCtrlC))
	if _, err := os.Stat(h.path); !os.IsNotExist(err) {
		t.Fatalf("quit without changes must not write again, stat err=%v", err)
	}
}

func TestSettingsCursorToggle(t *testing.T) {
	h := newHarness(t, selection.NewState())
	h.m.Update(key(tea.KeyTab))
	h.m.Update(runes("l"))
	h.m.Update(runes("j"))
	h.m.Update(runes("j"))
	h.m.Update(key(tea.KeySpace))
	if h.m.state.Enabled("キ") {
		t.Fatalf("expected キ toggled off")
	}
	if !h.m.state.Enabled("カ") {
		t.Fatalf("only the cursor character should change")
	}
	for i := 0; i < 20; i++ {
		h.m.Update(runes("j"))
	}
	if h.m.cursorRow != len(h.m.groups[1].Characters) {
		t.Fatalf("cursor should stop at the last row, got %d", h.m.cursorRow)
	}
	h.m.Update(runes("g"))
	k, _ := kana.FindGroup("k")
	if !h.m.state.GroupEnabled(k) {
		t.Fatalf("partially enabled group should toggle to enabled")
	}
	view := h.m.View()
	if !strings.Contains(view, "K Group") || !strings.Contains(view, "[x]") {
		t.Fatalf("settings view missing groups:\n%s", view)
	}
}

func TestEmptySelectionShowsNotice(t *testing.T) {
	h := newHarness(t, selection.NewState())
	h.m.Update(key(tea.KeyTab))
	h.m.Update(runes("n"))
	h.m.Update(key(tea.KeyEsc))

	if h.m.sched.State() != scheduler.Empty {
		t.Fatalf("expected empty state, got %s", h.m.sched.State())
	}
	if !strings.Contains(h.m.View(), "No characters selected") {
		t.Fatalf("expected nothing-selected notice")
	}
	h.m.Update(key(tea.KeyEnter))
	if h.m.sched.State() != scheduler.Empty {
		t.Fatalf("submission without prompt must be ignored")
	}

	h.m.Update(key(tea.KeyTab))
	h.m.Update(runes("a"))
	h.m.Update(key(tea.KeyEsc))
	if h.m.sched.State() != scheduler.Prompting {
		t.Fatalf("expected prompting after re-enabling")
	}
}

func TestRenderFooterFormats(t *testing.T) {
	h := newHarness(t, onlyGlyphs(t, "カ", "キ"))
	h.m.saveErr = io.ErrShortWrite
	out := h.m.renderFooter()
	for _, needle := range []string{"Round 1", "1 left", "✓ 0", "✗ 0", "2/46 selected", "unsaved changes"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("footer missing %q: %s", needle, out)
		}
	}
}
