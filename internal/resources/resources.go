// Package resources loads the read-only tables the dispatcher consults: the
// ignore list, the fixed translation table and the protected scenery names.
package resources

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Default file names inside the resources directory.
const (
	IgnoreListFile        = "ignore_list.txt"
	FixedTranslationsFile = "fixed_translations.csv"
	SceneryNamesFile      = "scenery_names.txt"
)

// FixedTable maps lowercased source text and target language to a literal
// translation. It is read-only after load.
type FixedTable map[string]map[string]string

// Lookup returns the fixed translation for text in language. The text is
// matched case-insensitively after trimming.
func (t FixedTable) Lookup(text, language string) (string, bool) {
	if t == nil {
		return "", false
	}
	byLang, ok := t[normalizeKey(text)]
	if !ok {
		return "", false
	}
	translation, ok := byLang[language]
	return translation, ok
}

// Add records a fixed translation.
func (t FixedTable) Add(text, language, translation string) {
	key := normalizeKey(text)
	if t[key] == nil {
		t[key] = make(map[string]string)
	}
	t[key][strings.TrimSpace(language)] = strings.TrimSpace(translation)
}

// Len returns the number of distinct source texts.
func (t FixedTable) Len() int { return len(t) }

// IgnoreSet holds chat bodies that are dropped without translation.
type IgnoreSet map[string]struct{}

// Contains reports whether body is ignored.
func (s IgnoreSet) Contains(body string) bool {
	_, ok := s[strings.TrimSpace(body)]
	return ok
}

// Set bundles everything loaded from a resources directory.
type Set struct {
	Ignore       IgnoreSet
	Fixed        FixedTable
	SceneryNames []string
	// SkippedRows counts malformed fixed translation rows.
	SkippedRows int
}

// LoadDir loads all resource files from dir. Missing files yield empty tables.
func LoadDir(dir string) (Set, error) {
	var set Set
	var err error
	if set.Ignore, err = LoadIgnoreList(filepath.Join(dir, IgnoreListFile)); err != nil {
		return Set{}, err
	}
	if set.Fixed, set.SkippedRows, err = LoadFixedTranslations(filepath.Join(dir, FixedTranslationsFile)); err != nil {
		return Set{}, err
	}
	if set.SceneryNames, err = LoadNames(filepath.Join(dir, SceneryNamesFile)); err != nil {
		return Set{}, err
	}
	return set, nil
}

// LoadIgnoreList reads one message body per line.
func LoadIgnoreList(path string) (IgnoreSet, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("load ignore list: %w", err)
	}
	set := make(IgnoreSet, len(lines))
	for _, line := range lines {
		set[line] = struct{}{}
	}
	return set, nil
}

// LoadNames reads one protected name per line, deduplicated in file order.
func LoadNames(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("load names: %w", err)
	}
	seen := make(map[string]struct{}, len(lines))
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		names = append(names, line)
	}
	return names, nil
}

// LoadFixedTranslations reads a CSV with a text,language,translation header.
// Rows with missing columns are skipped and counted.
func LoadFixedTranslations(path string) (FixedTable, int, error) {
	table := make(FixedTable)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return table, 0, nil
		}
		return nil, 0, fmt.Errorf("open fixed translations: %w", err)
	}
	defer func() { _ = file.Close() }()

	skipped, err := parseFixed(file, table)
	if err != nil {
		return nil, 0, fmt.Errorf("parse fixed translations: %w", err)
	}
	return table, skipped, nil
}

func parseFixed(r io.Reader, table FixedTable) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, err
	}
	cols := map[string]int{"text": -1, "language": -1, "translation": -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := cols[name]; ok {
			cols[name] = i
		}
	}
	for name, idx := range cols {
		if idx < 0 {
			return 0, fmt.Errorf("missing column %q", name)
		}
	}

	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		text, okText := field(record, cols["text"])
		lang, okLang := field(record, cols["language"])
		translation, okTr := field(record, cols["translation"])
		if !okText || !okLang || !okTr || strings.TrimSpace(text) == "" {
			skipped++
			continue
		}
		table.Add(text, lang, translation)
	}
	return skipped, nil
}

func field(record []string, idx int) (string, bool) {
	if idx >= len(record) {
		return "", false
	}
	return record[idx], true
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func normalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
