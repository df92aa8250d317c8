// Package chatlog recognises Train Driver 2 chat lines and classifies them by
// sender format.
package chatlog

import (
	"regexp"
	"strings"
)

// Category identifies which sender format a chat line matched.
type Category int

const (
	Dispatcher Category = iota
	Player
	StationRadio
)

func (c Category) String() string {
	switch c {
	case Dispatcher:
		return "dispatcher"
	case Player:
		return "player"
	case StationRadio:
		return "station_radio"
	default:
		return "unknown"
	}
}

// Message is a classified chat line.
type Message struct {
	Speaker  string
	Body     string
	Category Category
}

// Marker is the literal that introduces a chat payload in the game log.
const Marker = "ChatMessage:"

var (
	timestampRe = regexp.MustCompile(`\(\d{2}:\d{2}:\d{2}\)`)
	payloadRe   = regexp.MustCompile(`ChatMessage: (.*)`)
	markupRe    = regexp.MustCompile(`<.*?>`)
	driverRe    = regexp.MustCompile(`@([^\s:]+)`)

	dispatcherRe = regexp.MustCompile(`^(.*?)\((\d{2}:\d{2}:\d{2})\) ([A-Za-zĄĆĘŁŃÓŚŹŻąćęłńóśźż].*?@[^: ]+)(: | )(.*)$`)
	playerRe     = regexp.MustCompile(`^(.*?)\((\d{2}:\d{2}:\d{2})\) (\d+@[^: ]+)(: | )(.*)$`)
	stationRe    = regexp.MustCompile(`^(.*?)\((\d{2}:\d{2}:\d{2})\) \[(.*? \((.*?)\))\] (.*)$`)
)

// IsChatLine reports whether raw carries the chat marker and a (HH:MM:SS) timestamp.
func IsChatLine(raw string) bool {
	return strings.Contains(raw, Marker) && timestampRe.MatchString(raw)
}

// ExtractChat returns the markup-free chat payload of raw.
func ExtractChat(raw string) (string, bool) {
	if !IsChatLine(raw) {
		return "", false
	}
	m := payloadRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return markupRe.ReplaceAllString(m[1], ""), true
}

// Classify matches a chat payload against the dispatcher, player and station
// radio formats, in that order. Lines matching none are not chat messages.
func Classify(line string) (Message, bool) {
	line = strings.TrimRight(line, "\r\n")
	if m := dispatcherRe.FindStringSubmatch(line); m != nil {
		return Message{
			Speaker:  m[1] + "(" + m[2] + ") " + m[3],
			Body:     strings.TrimSpace(m[5]),
			Category: Dispatcher,
		}, true
	}
	if m := playerRe.FindStringSubmatch(line); m != nil {
		return Message{
			Speaker:  m[1] + "(" + m[2] + ") " + m[3],
			Body:     strings.TrimSpace(m[5]),
			Category: Player,
		}, true
	}
	if m := stationRe.FindStringSubmatch(line); m != nil {
		return Message{
			Speaker:  m[1] + "(" + m[2] + ") [" + m[3] + "]",
			Body:     strings.TrimSpace(m[5]),
			Category: StationRadio,
		}, true
	}
	return Message{}, false
}

// Parse runs ExtractChat then Classify on a raw log line.
func Parse(raw string) (Message, bool) {
	payload, ok := ExtractChat(raw)
	if !ok {
		return Message{}, false
	}
	return Classify(payload)
}

// DriverName returns the identity after '@' in a speaker label.
func DriverName(speaker string) string {
	m := driverRe.FindStringSubmatch(speaker)
	if m == nil {
		return ""
	}
	return m[1]
}
