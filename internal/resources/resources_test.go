package resources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDirMissingFiles(t *testing.T) {
	set, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if set.Fixed.Len() != 0 || len(set.Ignore) != 0 || len(set.SceneryNames) != 0 {
		t.Fatalf("LoadDir on empty dir = %+v, want empty", set)
	}
}

func TestLoadFixedTranslations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FixedTranslationsFile, "\ufefftext,language,translation\n"+
		" Hello ,German,Hallo\n"+
		"hello,Polish,Cześć\n"+
		"\"Good, morning\",German,Guten Morgen\n"+
		"broken,German\n")

	table, skipped, err := LoadFixedTranslations(filepath.Join(dir, FixedTranslationsFile))
	if err != nil {
		t.Fatalf("LoadFixedTranslations: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}

	tests := []struct {
		text, lang, want string
		ok               bool
	}{
		{"Hello", "German", "Hallo", true},
		{"HELLO", "Polish", "Cześć", true},
		{"good, morning", "German", "Guten Morgen", true},
		{"hello", "French", "", false},
		{"bye", "German", "", false},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.text, tt.lang)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("Lookup(%q, %q) = %q, %v; want %q, %v", tt.text, tt.lang, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoadFixedTranslationsMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FixedTranslationsFile, "text,translation\nhi,hallo\n")

	if _, _, err := LoadFixedTranslations(filepath.Join(dir, FixedTranslationsFile)); err == nil {
		t.Fatalf("expected error for missing language column")
	}
}

func TestLoadIgnoreAndNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, IgnoreListFile, "ok\n\n  gg  \n")
	writeFile(t, dir, SceneryNamesFile, "Katowice\nKraków Główny\nKatowice\n \n")

	set, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if !set.Ignore.Contains("gg") || !set.Ignore.Contains(" ok ") || set.Ignore.Contains("hello") {
		t.Fatalf("ignore set = %v", set.Ignore)
	}
	if len(set.SceneryNames) != 2 || set.SceneryNames[1] != "Kraków Główny" {
		t.Fatalf("SceneryNames = %v", set.SceneryNames)
	}
}
