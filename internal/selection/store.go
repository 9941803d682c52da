package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/kanadrill/internal/kana"
)

// ErrNotExist is returned by a Persister when nothing has been saved yet.
var ErrNotExist = errors.New("selection store does not exist")

const (
	valueOn  = "1"
	valueOff = "0"
)

// Entry is one persisted key/value pair.
type Entry struct {
	Key   string
	Value string
}

// Persister reads and writes raw key/value text.
type Persister interface {
	Read(ctx context.Context) (map[string]string, error)
	Write(ctx context.Context, entries []Entry) error
}

// EncodeError lists keys that cannot be written to the backing store.
type EncodeError struct {
	Keys []string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode selection keys %q: %v", e.Keys, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Store loads and saves selection state through a Persister.
type Store struct {
	p   Persister
	log *slog.Logger
}

// NewStore wraps a persister. A nil logger uses slog.Default().
func NewStore(p Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{p: p, log: logger}
}

// Load returns the persisted state. It never fails: read and decode problems
// are logged and the affected characters default to enabled.
func (s *Store) Load(ctx context.Context) *State {
	state := NewState()
	raw, err := s.p.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotExist) {
			s.log.Warn("failed to read selection, using defaults", "err", err)
		}
		return state
	}
	for key, value := range raw {
		ch, ok := kana.Lookup(key)
		if !ok {
			s.log.Warn("ignoring unknown selection key", "key", key)
			continue
		}
		switch strings.TrimSpace(value) {
		case valueOn:
			state.enabled[ch.Glyph] = true
		case valueOff:
			state.enabled[ch.Glyph] = false
		default:
			s.log.Warn("invalid selection value, defaulting to enabled", "char", ch.Glyph, "value", value)
		}
	}
	return state
}

// Save writes every character's flag. Keys that cannot be encoded abort the
// write so the previous contents stay intact.
func (s *Store) Save(ctx context.Context, state *State) error {
	entries := make([]Entry, 0, len(state.enabled))
	var bad []string
	var errs []error
	for _, ch := range kana.All() {
		if err := validateKey(ch.Glyph); err != nil {
			bad = append(bad, ch.Glyph)
			errs = append(errs, err)
			continue
		}
		value := valueOff
		if state.Enabled(ch.Glyph) {
			value = valueOn
		}
		entries = append(entries, Entry{Key: ch.Glyph, Value: value})
	}
	if len(bad) > 0 {
		return &EncodeError{Keys: bad, Err: errors.Join(errs...)}
	}
	if err := s.p.Write(ctx, entries); err != nil {
		return fmt.Errorf("failed to write selection: %w", err)
	}
	return nil
}

func validateKey(key string) error {
	switch {
	case key == "":
		return errors.New("empty key")
	case !utf8.ValidString(key):
		return fmt.Errorf("key %q is not valid UTF-8", key)
	case strings.TrimSpace(key) != key:
		return fmt.Errorf("key %q has surrounding whitespace", key)
	case strings.ContainsAny(key, "\r\n=:[]"):
		return fmt.Errorf("key %q contains a reserved character", key)
	}
	return nil
}
