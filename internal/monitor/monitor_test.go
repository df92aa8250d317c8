package monitor

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("create %s: %v", path, err)
		}
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestNewestAndPatternFilter(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	touch(t, filepath.Join(dir, "Log_a.txt"), base)
	touch(t, filepath.Join(dir, "Log_b.txt"), base.Add(time.Minute))
	touch(t, filepath.Join(dir, "other.txt"), base.Add(2*time.Minute))
	if err := os.Mkdir(filepath.Join(dir, "LogDir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m := New(dir, "Log")
	newest, ok, err := m.Newest()
	if err != nil || !ok {
		t.Fatalf("Newest() = %q, %v, %v", newest, ok, err)
	}
	if want := filepath.Join(dir, "Log_b.txt"); newest != want {
		t.Fatalf("Newest() = %q, want %q", newest, want)
	}

	files, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("List() returned %d files, want 2", len(files))
	}
}

func TestScanReportsResumedFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	a := filepath.Join(dir, "Log_a.txt")
	b := filepath.Join(dir, "Log_b.txt")
	touch(t, a, base)
	touch(t, b, base)

	m := New(dir, "Log")
	if err := m.Remember(); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	got, err := m.Scan(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("Scan() without activity = %v, %v", got, err)
	}

	touch(t, a, base.Add(time.Minute))
	c := filepath.Join(dir, "Log_c.txt")
	touch(t, c, base.Add(time.Minute))

	got, err = m.Scan(nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(got, []string{a}) {
		t.Fatalf("Scan() = %v, want [%s] (new file only recorded)", got, a)
	}

	touch(t, c, base.Add(2*time.Minute))
	touch(t, b, base.Add(2*time.Minute))
	got, err = m.Scan(func(path string) bool { return path == b })
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(got, []string{c}) {
		t.Fatalf("Scan() = %v, want [%s]", got, c)
	}
}

func TestListMissingDir(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "missing"), "Log")
	if _, err := m.List(); err == nil {
		t.Fatalf("List on missing dir succeeded")
	}
}
