// Package tui provides the Bubble Tea flashcard interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/kanadrill/internal/kana"
	"github.com/verte-zerg/kanadrill/internal/scheduler"
	"github.com/verte-zerg/kanadrill/internal/selection"
)

type screen int

const (
	screenPractice screen = iota
	screenSettings
)

// revealExpiredMsg is delivered once RevealDelay has passed for a ticket.
type revealExpiredMsg struct {
	ticket scheduler.Ticket
}

// Model implements the Bubble Tea practice and settings UI.
type Model struct {
	state *selection.State
	store *selection.Store
	sched *scheduler.Scheduler
	log   *slog.Logger

	width  int
	height int

	screen     screen
	input      textinput.Model
	lastPrompt int
	pending    scheduler.Ticket

	groups    []kana.Group
	cursorCol int
	cursorRow int

	saved   *selection.State
	saveErr error
}

var (
	glyphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E"))
	revealStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the UI and draws the first prompt.
func NewModel(state *selection.State, store *selection.Store, sched *scheduler.Scheduler, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	input := textinput.New()
	input.Placeholder = "romaji"
	input.CharLimit = 16
	input.Prompt = "> "

	m := &Model{
		state:  state,
		store:  store,
		sched:  sched,
		log:    logger.With("session", uuid.NewString()),
		input:  input,
		groups: kana.Groups(),
		saved:  state.Clone(),
	}
	m.advance()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case revealExpiredMsg:
		if msg.ticket != m.pending {
			return m, nil
		}
		ok, err := m.sched.Expire(msg.ticket)
		if !ok {
			return m, nil
		}
		m.pending = 0
		m.logAdvanceErr(err)
		return m, m.syncInput()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quit()
			return m, tea.Quit
		}
		if m.screen == screenSettings {
			return m, m.updateSettings(msg)
		}
		return m.updatePractice(msg)
	default:
		return m, nil
	}
}

func (m *Model) updatePractice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.quit()
		return m, tea.Quit
	case tea.KeyTab, tea.KeyCtrlS:
		m.openSettings()
		return m, nil
	case tea.KeyEnter:
		return m, m.submit()
	}
	if m.sched.State() != scheduler.Prompting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	verdict := m.sched.Submit(m.input.Value())
	switch {
	case verdict.Ignored:
		return nil
	case verdict.Correct:
		m.logAdvanceErr(verdict.Err)
		return m.syncInput()
	}
	m.pending = verdict.Ticket
	m.input.Blur()
	ticket := verdict.Ticket
	return tea.Tick(scheduler.RevealDelay, func(time.Time) tea.Msg {
		return revealExpiredMsg{ticket: ticket}
	})
}

// advance moves to the next prompt and resets the answer field.
func (m *Model) advance() tea.Cmd {
	m.pending = 0
	m.logAdvanceErr(m.sched.Next())
	return m.syncInput()
}

func (m *Model) syncInput() tea.Cmd {
	if m.sched.Prompt() != m.lastPrompt {
		m.lastPrompt = m.sched.Prompt()
		m.input.Reset()
	}
	if m.sched.State() != scheduler.Prompting {
		m.input.Blur()
		return nil
	}
	return m.input.Focus()
}

func (m *Model) logAdvanceErr(err error) {
	if err == nil || errors.Is(err, scheduler.ErrNothingSelected) {
		return
	}
	m.log.Error("failed to advance", "err", err)
}

func (m *Model) openSettings() {
	m.sched.CancelReveal()
	m.pending = 0
	m.input.Blur()
	m.screen = screenSettings
}

func (m *Model) closeSettings() tea.Cmd {
	m.save()
	m.screen = screenPractice
	return m.advance()
}

// save persists the selection when it differs from the last saved copy.
func (m *Model) save() {
	if m.state.Equal(m.saved) {
		m.saveErr = nil
		return
	}
	if err := m.store.Save(context.Background(), m.state); err != nil {
		m.log.Error("failed to save selection", "err", err)
		m.saveErr = err
		return
	}
	m.saved = m.state.Clone()
	m.saveErr = nil
}

func (m *Model) quit() {
	m.sched.CancelReveal()
	m.pending = 0
	m.save()
}

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "tab", "ctrl+s", "q":
		return m.closeSettings()
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case " ", "enter":
		m.toggleAtCursor()
	case "g":
		m.state.ToggleGroup(m.groups[m.cursorCol])
	case "a":
		m.state.SetAll(true)
	case "n":
		m.state.SetAll(false)
	}
	return nil
}

// moveCursor walks the settings grid; row 0 is the group header.
func (m *Model) moveCursor(dCol, dRow int) {
	m.cursorCol = clamp(m.cursorCol+dCol, 0, len(m.groups)-1)
	rows := len(m.groups[m.cursorCol].Characters)
	m.cursorRow = clamp(m.cursorRow+dRow, 0, rows)
}

func (m *Model) toggleAtCursor() {
	g := m.groups[m.cursorCol]
	if m.cursorRow == 0 {
		m.state.ToggleGroup(g)
		return
	}
	if err := m.state.Toggle(g.Characters[m.cursorRow-1].Glyph); err != nil {
		m.log.Error("failed to toggle character", "err", err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.screen == screenSettings {
		body = m.renderSettings()
	} else {
		body = m.renderPractice()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return body + "\n\n" + footer
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return content + "\n" + footerLine
}

func (m *Model) renderPractice() string {
	ch, ok := m.sched.Current()
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Center,
			noticeStyle.Render("No characters selected"),
			footerStyle.Render("press tab to choose characters"),
		)
	}
	lines := []string{glyphStyle.Render(ch.Glyph), "", m.input.View()}
	if answer, ok := m.sched.Reveal(); ok {
		lines = append(lines, "", revealStyle.Render("Answer: "+answer))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderSettings() string {
	cols := make([]column, len(m.groups))
	for i, g := range m.groups {
		col := column{}
		header := fmt.Sprintf("%s %s", checkbox(m.state.GroupEnabled(g)), g.Name)
		col.plain = append(col.plain, header)
		col.styled = append(col.styled, m.styleCell(header, i, 0, m.state.GroupEnabled(g)))
		for j, ch := range g.Characters {
			on := m.state.Enabled(ch.Glyph)
			line := fmt.Sprintf("  %s %s %s", checkbox(on), ch.Glyph, ch.Romaji)
			col.plain = append(col.plain, line)
			col.styled = append(col.styled, m.styleCell(line, i, j+1, on))
		}
		cols[i] = col
	}
	width := m.width
	if width > 0 {
		width = int(float64(width) * 0.9)
	}
	help := footerStyle.Render("space toggle · g group · a all · n none · esc close")
	return renderColumns(cols, width, 3) + "\n\n" + help
}

func (m *Model) styleCell(text string, col, row int, on bool) string {
	if col == m.cursorCol && row == m.cursorRow {
		return cursorStyle.Render(text)
	}
	if on {
		return enabledStyle.Render(text)
	}
	return disabledStyle.Render(text)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m *Model) renderFooter() string {
	stats := m.sched.Stats()
	enabled, total := m.state.Count()
	segments := []string{
		fmt.Sprintf("Round %d", stats.Round),
		fmt.Sprintf("%d left", m.sched.Remaining()),
		fmt.Sprintf("✓ %d", stats.Correct),
		fmt.Sprintf("✗ %d", stats.Missed),
		fmt.Sprintf("%d/%d selected", enabled, total),
	}
	if m.saveErr != nil {
		segments = append(segments, revealStyle.Render("unsaved changes"))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
