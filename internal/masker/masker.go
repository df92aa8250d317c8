// Package masker shields protected names (scenery names) from translation
// backends by swapping them for opaque tokens and restoring them afterwards.
package masker

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Masker holds a read-only set of protected names, longest first.
// It is safe for concurrent use.
type Masker struct {
	names []string
}

// Masked is the result of one Mask call. Tokens maps token to original name
// and is only meaningful for that call's Unmask.
type Masked struct {
	Text   string
	Tokens map[string]string
}

// New builds a Masker from names. Blank and duplicate names are ignored.
func New(names []string) *Masker {
	seen := make(map[string]struct{}, len(names))
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sorted = append(sorted, name)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	return &Masker{names: sorted}
}

// Len returns the number of protected names.
func (m *Masker) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Token returns the deterministic token for name.
func Token(name string) string {
	return fmt.Sprintf("__SCENERY_%016x__", xxhash.Sum64String(name))
}

// Mask replaces every whole-word, case-sensitive occurrence of each protected
// name in text with its token. Longer names are replaced first so a name that
// is a substring of another is never partially masked.
func (m *Masker) Mask(text string) Masked {
	out := Masked{Text: text}
	if m == nil || len(m.names) == 0 || text == "" {
		return out
	}
	for _, name := range m.names {
		replaced, ok := replaceWord(out.Text, name, Token(name))
		if !ok {
			continue
		}
		out.Text = replaced
		if out.Tokens == nil {
			out.Tokens = make(map[string]string)
		}
		out.Tokens[Token(name)] = name
	}
	return out
}

// Unmask restores the names recorded in the mask round-trip. Tokens the
// backend mangled or dropped stay lost.
func (m Masked) Unmask(text string) string {
	for token, name := range m.Tokens {
		text = strings.ReplaceAll(text, token, name)
	}
	return text
}

func replaceWord(text, word, token string) (string, bool) {
	var b strings.Builder
	found := false
	rest := text
	offset := 0
	for {
		idx := strings.Index(rest, word)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(word)
		if isBoundary(text, start, end) {
			if !found {
				b.Grow(len(text))
				found = true
			}
			b.WriteString(text[offset:start])
			b.WriteString(token)
			offset = end
			rest = text[end:]
			continue
		}
		// step past the first rune of this candidate
		_, size := utf8.DecodeRuneInString(text[start:])
		b.WriteString(text[offset : start+size])
		offset = start + size
		rest = text[offset:]
	}
	if !found {
		return text, false
	}
	b.WriteString(text[offset:])
	return b.String(), true
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
