// Package kana holds the fixed Katakana reference table.
package kana

import "strings"

// Character is a single practice glyph with its canonical romanization.
type Character struct {
	Glyph  string
	Romaji string
	Group  string
}

// Group is an ordered set of characters shown together in settings.
type Group struct {
	Name       string
	Characters []Character
}

// Key returns the short lookup key of the group ("k" for "K Group").
func (g Group) Key() string {
	name := strings.ToLower(g.Name)
	if name == "vowels" {
		return "a"
	}
	return strings.TrimSuffix(name, " group")
}

type entry struct {
	glyph  string
	romaji string
}

var table = []struct {
	name    string
	entries []entry
}{
	{"Vowels", []entry{{"ア", "a"}, {"イ", "i"}, {"ウ", "u"}, {"エ", "e"}, {"オ", "o"}}},
	{"K Group", []entry{{"カ", "ka"}, {"キ", "ki"}, {"ク", "ku"}, {"ケ", "ke"}, {"コ", "ko"}}},
	{"S Group", []entry{{"サ", "sa"}, {"シ", "shi"}, {"ス", "su"}, {"セ", "se"}, {"ソ", "so"}}},
	{"T Group", []entry{{"タ", "ta"}, {"チ", "chi"}, {"ツ", "tsu"}, {"テ", "te"}, {"ト", "to"}}},
	{"N Group", []entry{{"ナ", "na"}, {"ニ", "ni"}, {"ヌ", "nu"}, {"ネ", "ne"}, {"ノ", "no"}}},
	{"H Group", []entry{{"ハ", "ha"}, {"ヒ", "hi"}, {"フ", "fu"}, {"ヘ", "he"}, {"ホ", "ho"}}},
	{"M Group", []entry{{"マ", "ma"}, {"ミ", "mi"}, {"ム", "mu"}, {"メ", "me"}, {"モ", "mo"}}},
	{"Y Group", []entry{{"ヤ", "ya"}, {"ユ", "yu"}, {"ヨ", "yo"}}},
	{"R Group", []entry{{"ラ", "ra"}, {"リ", "ri"}, {"ル", "ru"}, {"レ", "re"}, {"ロ", "ro"}}},
	{"W Group", []entry{{"ワ", "wa"}, {"ヲ", "wo"}, {"ン", "n"}}},
}

var (
	groups  []Group
	byGlyph map[string]Character
)

func init() {
	byGlyph = make(map[string]Character)
	for _, t := range table {
		g := Group{Name: t.name, Characters: make([]Character, 0, len(t.entries))}
		for _, e := range t.entries {
			ch := Character{Glyph: e.glyph, Romaji: e.romaji, Group: t.name}
			g.Characters = append(g.Characters, ch)
			byGlyph[e.glyph] = ch
		}
		groups = append(groups, g)
	}
}

// Groups returns the reference groups in display order.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		chars := make([]Character, len(g.Characters))
		copy(chars, g.Characters)
		out[i] = Group{Name: g.Name, Characters: chars}
	}
	return out
}

// All returns every character in reference order.
func All() []Character {
	out := make([]Character, 0, len(byGlyph))
	for _, g := range groups {
		out = append(out, g.Characters...)
	}
	return out
}

// Lookup finds a character by glyph.
func Lookup(glyph string) (Character, bool) {
	ch, ok := byGlyph[glyph]
	return ch, ok
}

// FindGroup resolves a group by full name or short key, case-insensitively.
func FindGroup(name string) (Group, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Group{}, false
	}
	for _, g := range Groups() {
		if strings.ToLower(g.Name) == name || g.Key() == name {
			return g, true
		}
	}
	return Group{}, false
}
