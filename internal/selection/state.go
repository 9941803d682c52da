// Package selection tracks which characters are enabled for practice and
// persists that choice.
package selection

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/kanadrill/internal/kana"
)

// ErrUnknownCharacter is returned when a glyph is not in the reference table.
var ErrUnknownCharacter = errors.New("unknown character")

// State maps every reference character to its enabled flag.
type State struct {
	enabled map[string]bool
}

// NewState returns a state with every character enabled.
func NewState() *State {
	s := &State{enabled: make(map[string]bool)}
	for _, ch := range kana.All() {
		s.enabled[ch.Glyph] = true
	}
	return s
}

// Enabled reports whether the glyph is enabled. Unknown glyphs are disabled.
func (s *State) Enabled(glyph string) bool {
	return s.enabled[glyph]
}

// Set updates a single character.
func (s *State) Set(glyph string, on bool) error {
	if _, ok := s.enabled[glyph]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCharacter, glyph)
	}
	s.enabled[glyph] = on
	return nil
}

// Toggle flips a single character.
func (s *State) Toggle(glyph string) error {
	return s.Set(glyph, !s.Enabled(glyph))
}

// GroupEnabled reports whether every member of the group is enabled.
func (s *State) GroupEnabled(g kana.Group) bool {
	for _, ch := range g.Characters {
		if !s.enabled[ch.Glyph] {
			return false
		}
	}
	return len(g.Characters) > 0
}

// SetGroup sets every member of the group.
func (s *State) SetGroup(g kana.Group, on bool) {
	for _, ch := range g.Characters {
		if _, ok := s.enabled[ch.Glyph]; ok {
			s.enabled[ch.Glyph] = on
		}
	}
}

// ToggleGroup enables the whole group unless it is already fully enabled,
// in which case it disables it.
func (s *State) ToggleGroup(g kana.Group) {
	s.SetGroup(g, !s.GroupEnabled(g))
}

// SetAll sets every character.
func (s *State) SetAll(on bool) {
	for glyph := range s.enabled {
		s.enabled[glyph] = on
	}
}

// EnabledCharacters returns the enabled characters in reference order.
func (s *State) EnabledCharacters() []kana.Character {
	var out []kana.Character
	for _, ch := range kana.All() {
		if s.enabled[ch.Glyph] {
			out = append(out, ch)
		}
	}
	return out
}

// Count returns the number of enabled characters and the total.
func (s *State) Count() (enabled, total int) {
	for _, on := range s.enabled {
		if on {
			enabled++
		}
	}
	return enabled, len(s.enabled)
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	out := &State{enabled: make(map[string]bool, len(s.enabled))}
	for glyph, on := range s.enabled {
		out.enabled[glyph] = on
	}
	return out
}

// Equal reports whether both states hold the same flags.
func (s *State) Equal(other *State) bool {
	if len(s.enabled) != len(other.enabled) {
		return false
	}
	for glyph, on := range s.enabled {
		if other.enabled[glyph] != on {
			return false
		}
	}
	return true
}
