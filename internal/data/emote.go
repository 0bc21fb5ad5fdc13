package data

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProbeEmote is the emote id used by the lag probe. No client draws it.
const ProbeEmote uint8 = 229

// EmoteEntry is one emote and its aliases. The first alias is the
// preferred textual form.
type EmoteEntry struct {
	ID    uint8    `yaml:"id"`
	Names []string `yaml:"names"`
}

// defaultEmotes are the stock server emotes (1-14) followed by the
// ManaPlus set (101-128).
var defaultEmotes = []EmoteEntry{
	{1, []string{"yuck", "gross", "bleh"}},
	{2, []string{"O_o", "surprise", "0_o"}},
	{3, []string{":-)", "smile", "happy", ":)"}},
	{4, []string{":-(", ":(", "sad"}},
	{5, []string{"evil", ">:D"}},
	{6, []string{";-)", ";)", "wink"}},
	{7, []string{"angelic", "angel", "halo"}},
	{8, []string{"blush", "embarrassed"}},
	{9, []string{":P", ":p"}},
	{10, []string{"8D", ":D", "grin"}},
	{11, []string{"upset"}},
	{12, []string{"perturbed", "troubled"}},
	{13, []string{"(...)", "..."}},
	{14, []string{"speech"}},

	{101, []string{"kat", "kitty", "cat", ":3"}},
	{102, []string{"XD", "lol", "laugh", "><"}},
	{103, []string{"cheerful", "^.^"}},
	{104, []string{"love"}},
	{105, []string{"money"}},
	{106, []string{"ZzZzzZ", "zzz", "sleep", "tired", "sleepy"}},
	{107, []string{"rest", "relax", "u.u"}},
	{108, []string{"-.-", "bothered"}},
	{109, []string{"afraid", "frightened", "fright", ":o", "scared", "fear"}},
	{110, []string{"x_x", "xx", "dead"}},
	{111, []string{"suspicious"}},
	{112, []string{"melancholy"}},
	{113, []string{"facepalm", "palm"}},
	{114, []string{"angry", "bite"}},
	{115, []string{"headache"}},
	{116, []string{"purple"}},
	{117, []string{"(@#!)", "swear"}},
	{118, []string{"heart"}},
	{119, []string{"blank"}},
	{120, []string{"pumpkin"}},
	{121, []string{"vicious", "deadly"}},
	{122, []string{"epic"}},
	{123, []string{"geek"}},
	{124, []string{"mimi", "shy"}},
	{125, []string{"alien", "bug"}},
	{126, []string{"troll"}},
	{127, []string{"pain", "metal"}},
	{128, []string{"tears", "cry", "crying"}},
}

// EmoteTable maps emote aliases to ids and back. It is read-only once built.
type EmoteTable struct {
	byName map[string]uint8 // lower-cased alias -> id
	byID   map[uint8]string // id -> preferred alias
}

// DefaultEmotes builds the table from the built-in list.
func DefaultEmotes() *EmoteTable {
	return newEmoteTable(defaultEmotes)
}

// LoadEmoteTable loads an emote list from YAML. Entries replace built-in
// entries with the same id; the rest of the built-in list is kept.
func LoadEmoteTable(path string) (*EmoteTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read emote list: %w", err)
	}
	var entries []EmoteEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse emote list: %w", err)
	}

	override := make(map[uint8]bool, len(entries))
	for i, e := range entries {
		if len(e.Names) == 0 {
			return nil, fmt.Errorf("emote list entry %d (id %d): no names", i, e.ID)
		}
		override[e.ID] = true
	}
	merged := make([]EmoteEntry, 0, len(defaultEmotes)+len(entries))
	for _, e := range defaultEmotes {
		if !override[e.ID] {
			merged = append(merged, e)
		}
	}
	merged = append(merged, entries...)
	return newEmoteTable(merged), nil
}

func newEmoteTable(entries []EmoteEntry) *EmoteTable {
	t := &EmoteTable{
		byName: make(map[string]uint8),
		byID:   make(map[uint8]string, len(entries)),
	}
	for _, e := range entries {
		t.byID[e.ID] = e.Names[0]
		for _, n := range e.Names {
			t.byName[strings.ToLower(n)] = e.ID
		}
	}
	return t
}

// ID resolves an alias or a decimal id. Aliases match case-insensitively.
func (t *EmoteTable) ID(s string) (uint8, error) {
	if id, ok := t.byName[strings.ToLower(s)]; ok {
		return id, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown emote %q", s)
	}
	return uint8(n), nil
}

// Name returns the preferred alias of id, or its decimal form.
func (t *EmoteTable) Name(id uint8) string {
	if n, ok := t.byID[id]; ok {
		return n
	}
	return strconv.Itoa(int(id))
}

// Count returns the number of emote ids known.
func (t *EmoteTable) Count() int {
	return len(t.byID)
}
