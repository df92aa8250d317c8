package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/bravuralion/td2-chat-translator/internal/chatlog"
)

// DefaultMaxLines bounds a tab transcript when the store is built with a
// non-positive limit.
const DefaultMaxLines = 500

// LiveTab is the id of the tab that collects manual translations.
const LiveTab = "live"

// Category drives how an entry is styled.
type Category int

const (
	CategoryDispatcher Category = iota
	CategoryPlayer
	CategoryStationRadio
	CategoryWarning
	CategorySystem
	CategoryManual
)

func (c Category) String() string {
	switch c {
	case CategoryDispatcher:
		return "dispatcher"
	case CategoryPlayer:
		return "player"
	case CategoryStationRadio:
		return "station_radio"
	case CategoryWarning:
		return "warning"
	case CategorySystem:
		return "system"
	case CategoryManual:
		return "manual"
	default:
		return "unknown"
	}
}

// FromChat maps a classifier category onto an entry category.
func FromChat(c chatlog.Category) Category {
	switch c {
	case chatlog.Dispatcher:
		return CategoryDispatcher
	case chatlog.Player:
		return CategoryPlayer
	case chatlog.StationRadio:
		return CategoryStationRadio
	default:
		return CategorySystem
	}
}

// Entry is one rendered transcript line.
type Entry struct {
	Time     time.Time
	Category Category
	// Text is the display line, usually "speaker: translation".
	Text string
	// Original is the untranslated body, shown when the user asks for it.
	Original string
	Failed   bool
}

// Tab is the transcript of one open log file, or of manual input.
type Tab struct {
	ID      string
	Title   string
	Entries []Entry
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Tabs        []Tab
	Notice      string
	LastError   error
	LastUpdated time.Time
	// Revision increases on every change so readers can skip redraws.
	Revision uint64
}

// Tab returns the tab with id.
func (s Snapshot) Tab(id string) (Tab, bool) {
	for _, t := range s.Tabs {
		if t.ID == id {
			return t, true
		}
	}
	return Tab{}, false
}

// EventKind selects what an Event changes.
type EventKind int

const (
	TabOpened EventKind = iota
	TabClosed
	EntriesAdded
	ErrorRaised
	NoticeSet
)

// Event is a single change produced by the feed and applied by one consumer.
type Event struct {
	Kind    EventKind
	Tab     string
	Title   string
	Entries []Entry
	Err     error
	Notice  string
}

// Store coordinates concurrent updates to the transcript.
type Store struct {
	mu       sync.RWMutex
	maxLines int
	tabs     []*Tab
	snapshot Snapshot
}

// NewStore returns a store that keeps at most maxLines entries per tab.
func NewStore(maxLines int) *Store {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Store{maxLines: maxLines}
}

// Apply records ev. Entries for a tab that is not open are dropped, which is
// how late results for a closed tab disappear.
func (s *Store) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case TabOpened:
		if s.find(ev.Tab) >= 0 {
			return
		}
		title := ev.Title
		if title == "" {
			title = ev.Tab
		}
		s.tabs = append(s.tabs, &Tab{ID: ev.Tab, Title: title})
	case TabClosed:
		i := s.find(ev.Tab)
		if i < 0 {
			return
		}
		s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)
	case EntriesAdded:
		i := s.find(ev.Tab)
		if i < 0 || len(ev.Entries) == 0 {
			return
		}
		tab := s.tabs[i]
		tab.Entries = append(tab.Entries, ev.Entries...)
		if over := len(tab.Entries) - s.limit(); over > 0 {
			tab.Entries = append([]Entry(nil), tab.Entries[over:]...)
		}
	case ErrorRaised:
		s.snapshot.LastError = ev.Err
	case NoticeSet:
		s.snapshot.Notice = ev.Notice
	default:
		return
	}
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.Revision++
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Tabs = cloneTabs(s.tabs)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) find(id string) int {
	for i, t := range s.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) limit() int {
	if s.maxLines <= 0 {
		return DefaultMaxLines
	}
	return s.maxLines
}

func cloneTabs(tabs []*Tab) []Tab {
	if len(tabs) == 0 {
		return nil
	}
	dup := make([]Tab, len(tabs))
	for i, t := range tabs {
		dup[i] = Tab{ID: t.ID, Title: t.Title}
		if len(t.Entries) > 0 {
			dup[i].Entries = make([]Entry, len(t.Entries))
			copy(dup[i].Entries, t.Entries)
		}
	}
	return dup
}
