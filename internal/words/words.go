// Package words provides the word pools grids are generated from.
//
// Pools are plain values handed to whoever needs them; there is no package
// level state. Every word in a pool is uppercase ASCII A-Z, at least
// MinWordLen letters long and unique within the pool. Accents are folded
// away on the way in, so "élève" joins a pool as ELEVE.
package words

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const MinWordLen = 3

type Language string

const (
	French  Language = "fr"
	English Language = "en"
	Spanish Language = "es"
)

//go:embed lists/*.txt
var lists embed.FS

var ErrUnknownLanguage = fmt.Errorf("unknown language")

type Pool struct {
	lang    Language
	words   []string
	set     map[string]struct{}
	skipped int
}

// Config selects a pool: a file path wins over the embedded language list.
type Config struct {
	Language string `envconfig:"WORDMIX_WORDS_LANGUAGE" default:"fr"`
	FilePath string `envconfig:"WORDMIX_WORDS_FILE"`
}

// Load resolves config into a pool.
func Load(config Config) (*Pool, error) {
	if config.FilePath != "" {
		pool, err := FromFile(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("words from file: %w", err)
		}
		return pool, nil
	}

	return Embedded(Language(config.Language))
}

// Embedded returns the built-in list for lang.
func Embedded(lang Language) (*Pool, error) {
	f, err := lists.Open("lists/" + string(lang) + ".txt")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	defer f.Close()

	pool, err := FromReader(lang, f)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s: %w", lang, err)
	}

	return pool, nil
}

// FromFile reads one word per line from path.
func FromFile(path string) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return FromReader("", f)
}

// FromReader reads one word per line. Blank lines, '#' comments and words that
// are not purely alphabetic after normalisation are skipped.
func FromReader(lang Language, r io.Reader) (*Pool, error) {
	var list []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return New(lang, list), nil
}

// New builds a pool from raw words, normalising and de-duplicating them while
// keeping first-seen order.
func New(lang Language, raw []string) *Pool {
	p := &Pool{lang: lang, set: make(map[string]struct{}, len(raw))}
	for _, w := range raw {
		w = Normalize(w)
		if !Valid(w) {
			p.skipped++
			continue
		}
		if _, ok := p.set[w]; ok {
			continue
		}
		p.set[w] = struct{}{}
		p.words = append(p.words, w)
	}

	return p
}

func (p *Pool) Language() Language {
	return p.lang
}

func (p *Pool) Len() int {
	return len(p.words)
}

// Skipped is the number of raw words rejected as unplaceable. Duplicates do
// not count.
func (p *Pool) Skipped() int {
	return p.skipped
}

// Words returns a copy of the pool in its stable order.
func (p *Pool) Words() []string {
	out := make([]string, len(p.words))
	copy(out, p.words)
	return out
}

func (p *Pool) Contains(w string) bool {
	_, ok := p.set[Normalize(w)]
	return ok
}

// Normalize trims, uppercases and strips diacritics from a word.
func Normalize(w string) string {
	w = strings.ToUpper(strings.TrimSpace(w))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, w)
	if err != nil {
		return w
	}
	return folded
}

// Valid reports whether an already normalised word can be placed in a grid.
func Valid(w string) bool {
	return len(w) >= MinWordLen && isAlpha(w)
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
