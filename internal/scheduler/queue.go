// Package scheduler decides which character to prompt next and validates
// answers.
package scheduler

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/kanadrill/internal/kana"
)

// Queue is the remaining draw order of the current round. Characters already
// drawn this round are remembered so they do not count as missing.
type Queue struct {
	rnd   *rand.Rand
	items []kana.Character
	drawn map[string]struct{}
}

// NewQueue returns an empty queue. A nil source is seeded with the current
// time.
func NewQueue(rnd *rand.Rand) *Queue {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Queue{rnd: rnd, drawn: map[string]struct{}{}}
}

// Len returns the number of characters left in the round.
func (q *Queue) Len() int {
	return len(q.items)
}

// contains reports whether the glyph is still scheduled this round.
func (q *Queue) contains(glyph string) bool {
	for _, ch := range q.items {
		if ch.Glyph == glyph {
			return true
		}
	}
	return false
}

// NeedsRefill is true when the queue is empty or an enabled character has
// been neither drawn nor scheduled this round.
func (q *Queue) NeedsRefill(enabled []kana.Character) bool {
	if len(q.items) == 0 {
		return true
	}
	scheduled := make(map[string]struct{}, len(q.items))
	for _, ch := range q.items {
		scheduled[ch.Glyph] = struct{}{}
	}
	for _, ch := range enabled {
		if _, ok := scheduled[ch.Glyph]; ok {
			continue
		}
		if _, ok := q.drawn[ch.Glyph]; !ok {
			return true
		}
	}
	return false
}

// Prune forgets characters that are no longer enabled, both scheduled and
// drawn, so re-enabling one later forces a refill.
func (q *Queue) Prune(enabled []kana.Character) {
	keep := make(map[string]struct{}, len(enabled))
	for _, ch := range enabled {
		keep[ch.Glyph] = struct{}{}
	}
	for glyph := range q.drawn {
		if _, ok := keep[glyph]; !ok {
			delete(q.drawn, glyph)
		}
	}
	out := q.items[:0]
	for _, ch := range q.items {
		if _, ok := keep[ch.Glyph]; ok {
			out = append(out, ch)
		}
	}
	q.items = out
}

// Refill replaces the queue with a uniform random permutation of the enabled
// characters. Duplicate glyphs are collapsed.
func (q *Queue) Refill(enabled []kana.Character) {
	seen := make(map[string]struct{}, len(enabled))
	items := make([]kana.Character, 0, len(enabled))
	for _, ch := range enabled {
		if _, ok := seen[ch.Glyph]; ok {
			continue
		}
		seen[ch.Glyph] = struct{}{}
		items = append(items, ch)
	}
	q.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	q.items = items
	q.drawn = make(map[string]struct{}, len(items))
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (kana.Character, bool) {
	if len(q.items) == 0 {
		return kana.Character{}, false
	}
	ch := q.items[0]
	q.items = q.items[1:]
	q.drawn[ch.Glyph] = struct{}{}
	return ch, true
}

// remaining returns a copy of the scheduled characters in draw order.
func (q *Queue) remaining() []kana.Character {
	out := make([]kana.Character, len(q.items))
	copy(out, q.items)
	return out
}
