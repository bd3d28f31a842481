package record

import (
	"fmt"
	"strings"
	"time"
)

// Level is a logcat severity. The zero value is Verbose; ordering follows
// logcat's own (Verbose < Debug < Info < Warning < Error).
type Level int

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
)

var levelLetters = [...]byte{'V', 'D', 'I', 'W', 'E'}
var levelNames = [...]string{"VERBOSE", "DEBUG", "INFO", "WARN", "ERROR"}

// Letter returns the single-character logcat form ("E", "W", ...).
func (l Level) Letter() string {
	if l < LevelVerbose || l > LevelError {
		return "?"
	}
	return string(levelLetters[l])
}

func (l Level) String() string {
	if l < LevelVerbose || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// LevelFromLetter maps a logcat level letter to a Level.
func LevelFromLetter(c byte) (Level, bool) {
	for i, letter := range levelLetters {
		if c == letter {
			return Level(i), true
		}
	}
	return 0, false
}

// LevelFromName accepts either the letter or the word form, case-insensitively.
func LevelFromName(name string) (Level, bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(name))
	if len(trimmed) == 1 {
		return LevelFromLetter(trimmed[0])
	}
	for i, n := range levelNames {
		if trimmed == n {
			return Level(i), true
		}
	}
	// Accept the long forms logcat documents.
	switch trimmed {
	case "WARNING":
		return LevelWarning, true
	}
	return 0, false
}

// Origin names the logical logcat buffer a record came from.
type Origin string

const (
	OriginMain   Origin = "main"
	OriginSystem Origin = "system"
	OriginCrash  Origin = "crash"
)

// OriginFromName validates a configured buffer name.
func OriginFromName(name string) (Origin, bool) {
	switch Origin(strings.ToLower(strings.TrimSpace(name))) {
	case OriginMain:
		return OriginMain, true
	case OriginSystem:
		return OriginSystem, true
	case OriginCrash:
		return OriginCrash, true
	}
	return "", false
}

// Record is one parsed log entry. Records are constructed once and passed by
// value; nothing mutates a record after ingestion.
type Record struct {
	Time     time.Time
	PID      int
	TID      int
	Level    Level
	Tag      string
	Message  string
	Origin   Origin
	DeviceID string
}

// ParseError reports a line the active format could not interpret.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Line, e.Reason)
}
