package scheduler

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/kanadrill/internal/kana"
)

// RevealDelay is how long a wrong answer stays on screen before the next
// prompt.
const RevealDelay = 2000 * time.Millisecond

// ErrNothingSelected is returned when no character is enabled.
var ErrNothingSelected = errors.New("no characters selected")

// State is the scheduler phase.
type State int

const (
	// Empty means no prompt could be produced.
	Empty State = iota
	// Prompting accepts answers.
	Prompting
	// Revealing shows the correct answer and rejects input.
	Revealing
)

func (s State) String() string {
	switch s {
	case Prompting:
		return "prompting"
	case Revealing:
		return "revealing"
	default:
		return "empty"
	}
}

// EnabledFunc returns the currently enabled characters.
type EnabledFunc func() []kana.Character

// Clock abstracts wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Ticket identifies a pending reveal. The zero ticket is never issued.
type Ticket uint64

// Verdict is the outcome of a submission.
type Verdict struct {
	// Ignored is set when input is not accepted in the current state.
	Ignored  bool
	Correct  bool
	Expected string
	// Ticket must be handed back to Expire once RevealDelay has elapsed.
	Ticket      Ticket
	RevealUntil time.Time
	// Err carries the advance failure on the correct-answer path.
	Err error
}

// Stats counts answers in the running session. It is not persisted.
type Stats struct {
	Correct int
	Missed  int
	Round   int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRand sets the shuffle source.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Scheduler) {
		s.queue = NewQueue(rnd)
	}
}

// WithClock sets the clock used for reveal deadlines.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// Scheduler drives the prompt/answer loop.
type Scheduler struct {
	enabled EnabledFunc
	queue   *Queue
	clock   Clock

	state       State
	current     kana.Character
	prompt      int
	reveal      string
	revealUntil time.Time
	pending     Ticket
	lastTicket  Ticket
	stats       Stats
}

// New builds a scheduler reading the enabled set from enabled.
func New(enabled EnabledFunc, opts ...Option) *Scheduler {
	s := &Scheduler{enabled: enabled, clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.queue == nil {
		s.queue = NewQueue(nil)
	}
	return s
}

// State returns the current phase.
func (s *Scheduler) State() State {
	return s.state
}

// Current returns the prompted character, if any.
func (s *Scheduler) Current() (kana.Character, bool) {
	if s.state == Empty {
		return kana.Character{}, false
	}
	return s.current, true
}

// Prompt returns a counter bumped on every new prompt. Callers use it to
// notice that the answer input must be cleared.
func (s *Scheduler) Prompt() int {
	return s.prompt
}

// Reveal returns the correct romanization while revealing.
func (s *Scheduler) Reveal() (string, bool) {
	if s.state != Revealing {
		return "", false
	}
	return s.reveal, true
}

// Remaining returns how many characters are left in the round.
func (s *Scheduler) Remaining() int {
	return s.queue.Len()
}

// Stats returns the session counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// Next advances using the scheduler's enabled set.
func (s *Scheduler) Next() error {
	return s.Advance(s.enabled())
}

// Advance dismisses any reveal, refills the queue when it is empty or out of
// sync with enabled, and prompts the next character.
func (s *Scheduler) Advance(enabled []kana.Character) error {
	s.reveal = ""
	s.revealUntil = time.Time{}
	s.pending = 0

	s.queue.Prune(enabled)
	if s.queue.NeedsRefill(enabled) {
		s.queue.Refill(enabled)
		if s.queue.Len() > 0 {
			s.stats.Round++
		}
	}
	ch, ok := s.queue.Pop()
	if !ok {
		s.state = Empty
		s.current = kana.Character{}
		return ErrNothingSelected
	}
	s.current = ch
	s.prompt++
	s.state = Prompting
	return nil
}

// Submit checks a typed answer against the current prompt.
func (s *Scheduler) Submit(raw string) Verdict {
	if s.state != Prompting {
		return Verdict{Ignored: true}
	}
	expected := s.current.Romaji
	if Normalize(raw) == expected {
		s.stats.Correct++
		return Verdict{Correct: true, Expected: expected, Err: s.Next()}
	}

	s.stats.Missed++
	s.lastTicket++
	s.pending = s.lastTicket
	s.state = Revealing
	s.reveal = expected
	s.revealUntil = s.clock.Now().Add(RevealDelay)
	return Verdict{
		Expected:    expected,
		Ticket:      s.pending,
		RevealUntil: s.revealUntil,
	}
}

// Expire ends the reveal identified by t and advances. It reports whether an
// advance happened; stale, cancelled, or early tickets are ignored.
func (s *Scheduler) Expire(t Ticket) (bool, error) {
	if s.state != Revealing || t == 0 || t != s.pending {
		return false, nil
	}
	if s.clock.Now().Before(s.revealUntil) {
		return false, nil
	}
	return true, s.Next()
}

// CancelReveal invalidates the pending reveal ticket. The reveal stays on
// screen until the next Advance.
func (s *Scheduler) CancelReveal() {
	s.pending = 0
}

// Normalize trims surrounding whitespace and lowercases an answer.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
