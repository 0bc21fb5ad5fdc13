package data

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultEmotes(t *testing.T) {
	tbl := DefaultEmotes()
	tests := []struct {
		in   string
		want uint8
	}{
		{"smile", 3},
		{":)", 3},
		{"LOL", 102},
		{"xd", 102},
		{":p", 9},
		{"crying", 128},
		{"42", 42},
		{"229", 229},
	}
	for _, tt := range tests {
		got, err := tbl.ID(tt.in)
		if err != nil {
			t.Errorf("ID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"nope", "256", "-1", ""} {
		if _, err := tbl.ID(bad); err == nil {
			t.Errorf("ID(%q) should fail", bad)
		}
	}

	if got := tbl.Name(106); got != "ZzZzzZ" {
		t.Errorf("Name(106) = %q", got)
	}
	if got := tbl.Name(200); got != "200" {
		t.Errorf("Name(200) = %q", got)
	}
	if tbl.Count() != 42 {
		t.Errorf("Count = %d, want 42", tbl.Count())
	}
}

func TestLoadEmoteTableOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emotes.yaml")
	yml := `
- id: 3
  names: [grin2]
- id: 200
  names: [wave, hi]
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadEmoteTable(path)
	if err != nil {
		t.Fatalf("LoadEmoteTable: %v", err)
	}
	if id, _ := tbl.ID("hi"); id != 200 {
		t.Errorf("ID(hi) = %d", id)
	}
	if tbl.Name(3) != "grin2" {
		t.Errorf("Name(3) = %q", tbl.Name(3))
	}
	if _, err := tbl.ID("smile"); err == nil {
		t.Error("overridden alias still resolves")
	}
	if id, _ := tbl.ID("yuck"); id != 1 {
		t.Errorf("built-in entry lost: ID(yuck) = %d", id)
	}
}

func TestLoadEmoteTableRejectsNamelessEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emotes.yaml")
	if err := os.WriteFile(path, []byte("- id: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEmoteTable(path); err == nil {
		t.Error("expected error for entry without names")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
		ok   bool
	}{
		{"north", DirNorth, true},
		{"S", DirSouth, true},
		{"East", DirEast, true},
		{"w", DirWest, true},
		{"6", 6, true},
		{"16", 0, false},
		{"up", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDirection(%q) err = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseDirection(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
