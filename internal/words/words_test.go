package words

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbedded(t *testing.T) {
	t.Parallel()

	for _, lang := range []Language{French, English, Spanish} {
		lang := lang
		t.Run(string(lang), func(t *testing.T) {
			t.Parallel()

			pool, err := Embedded(lang)
			if err != nil {
				t.Fatalf("embedded %s: %v", lang, err)
			}
			if pool.Len() < 100 {
				t.Errorf("expected a sizeable list, got %d words", pool.Len())
			}
			if pool.Language() != lang {
				t.Errorf("expected %#v got %#v", lang, pool.Language())
			}
			for _, w := range pool.Words() {
				if w != strings.ToUpper(w) || len(w) < MinWordLen {
					t.Errorf("bad word %q", w)
				}
			}
		})
	}
}

func TestEmbeddedUnknown(t *testing.T) {
	t.Parallel()

	if _, err := Embedded("xx"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("expected %v got %v", ErrUnknownLanguage, err)
	}
}

func TestNewNormalizes(t *testing.T) {
	t.Parallel()

	pool := New(English, []string{" cat ", "CAT", "ox", "dog2", "Élan", "horse"})
	got := pool.Words()
	want := []string{"CAT", "ELAN", "HORSE"}
	if len(got) != len(want) {
		t.Fatalf("expected %#v got %#v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %#v got %#v", want, got)
		}
	}

	if !pool.Contains("horse") {
		t.Error("expected case-insensitive lookup")
	}
	if got := pool.Skipped(); got != 2 {
		t.Errorf("expected %#v got %#v", 2, got)
	}
}

func TestNormalizeFoldsDiacritics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"élève", "ELEVE"},
		{" Château ", "CHATEAU"},
		{"garçon", "GARCON"},
		{"piñata", "PINATA"},
		{"NOËL", "NOEL"},
		{"été", "ETE"},
		{"plain", "PLAIN"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("%q: expected %#v got %#v", tc.in, tc.want, got)
		}
	}
}

func TestFromReaderKeepsAccentedWords(t *testing.T) {
	t.Parallel()

	pool, err := FromReader(French, strings.NewReader("élève\nforêt\nFORET\ncœur\nété\n"))
	if err != nil {
		t.Fatalf("from reader: %v", err)
	}

	want := []string{"ELEVE", "FORET", "ETE"}
	got := pool.Words()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %#v got %#v", want, got)
	}
	if !pool.Contains("Forêt") {
		t.Error("expected accented lookup to match the folded word")
	}
	if got := pool.Skipped(); got != 1 {
		t.Errorf("expected %#v got %#v", 1, got)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("# animals\nlion\n\ntiger\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	pool, err := Load(Config{Language: "fr", FilePath: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pool.Len() != 2 || !pool.Contains("TIGER") {
		t.Errorf("unexpected pool %#v", pool.Words())
	}
}
