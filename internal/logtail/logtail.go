package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Filter maps a raw log line to the text a caller cares about. Lines for
// which it returns false are skipped.
type Filter func(raw string) (string, bool)

// ErrTruncated is returned by Poll when the file shrank below the cursor.
var ErrTruncated = errors.New("log file truncated")

// Cursor tails one growing file. It is owned by a single goroutine.
type Cursor struct {
	path   string
	file   *os.File
	offset int64
	filter Filter
	recent []string
}

// Open opens path and positions the cursor after the last complete line.
// The last history matching lines already in the file are kept for Recent.
func Open(path string, filter Filter, history int) (*Cursor, error) {
	if filter == nil {
		filter = func(raw string) (string, bool) { return raw, true }
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	c := &Cursor{path: path, file: file, filter: filter}
	ring := newRing(history)
	consumed, err := readComplete(bufio.NewReader(file), func(line string) {
		if text, ok := filter(line); ok {
			ring.push(text)
		}
	})
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("read log: %w", err)
	}
	c.offset = consumed
	c.recent = ring.lines()
	return c, nil
}

// Path returns the tailed file path.
func (c *Cursor) Path() string { return c.path }

// Offset returns the byte position after the last consumed line.
func (c *Cursor) Offset() int64 { return c.offset }

// Recent returns the matching lines found when the cursor was opened, oldest first.
func (c *Cursor) Recent() []string {
	return append([]string(nil), c.recent...)
}

// Poll reads lines appended since the last call and returns the filtered
// ones. A trailing line without a newline is left for a later Poll.
func (c *Cursor) Poll() ([]string, error) {
	if c.file == nil {
		return nil, os.ErrClosed
	}
	info, err := c.file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < c.offset {
		return nil, ErrTruncated
	}
	if info.Size() == c.offset {
		return nil, nil
	}
	if _, err := c.file.Seek(c.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log: %w", err)
	}

	var out []string
	consumed, err := readComplete(bufio.NewReader(c.file), func(line string) {
		if text, ok := c.filter(line); ok {
			out = append(out, text)
		}
	})
	c.offset += consumed
	if err != nil {
		return out, fmt.Errorf("read log: %w", err)
	}
	return out, nil
}

// Close releases the file handle.
func (c *Cursor) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	if maxLines <= 0 {
		var lines []string
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := newRing(maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring.push(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return ring.lines(), nil
}

// readComplete calls fn for every newline-terminated line in r and returns
// the number of bytes those lines occupied. A final unterminated line is not
// consumed.
func readComplete(r *bufio.Reader, fn func(line string)) (int64, error) {
	var consumed int64
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, err
		}
		consumed += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		fn(strings.ToValidUTF8(line, "�"))
	}
}

type ring struct {
	buf   []string
	idx   int
	count int
}

func newRing(size int) *ring {
	if size < 0 {
		size = 0
	}
	return &ring{buf: make([]string, size)}
}

func (r *ring) push(line string) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.idx] = line
	r.idx = (r.idx + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *ring) lines() []string {
	if r.count == 0 {
		return nil
	}
	out := make([]string, r.count)
	if r.count == len(r.buf) {
		for i := 0; i < r.count; i++ {
			out[i] = r.buf[(r.idx+i)%len(r.buf)]
		}
	} else {
		copy(out, r.buf[:r.count])
	}
	return out
}
