// Package filter evaluates which records are visible under the current
// display configuration. Matching is pure: the ingestion pipeline never
// consults it, the display re-applies it to ring snapshots on its own
// cadence.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/droidtail/droidtail/internal/record"
)

// Config is one filter configuration. The zero value shows nothing (no
// levels enabled); use Default for the all-levels starting point.
type Config struct {
	// Levels maps each severity to whether it is visible.
	Levels [record.LevelError + 1]bool

	// Tag is a case-sensitive substring constraint on the record tag.
	// Empty means unconstrained.
	Tag string

	// TagPattern, when non-nil, replaces the substring test with a
	// compiled pattern test. Built by WithTagPattern.
	TagPattern *regexp.Regexp

	// Search is a free-text constraint checked against message and tag.
	// Empty means unconstrained. Matching is case-insensitive.
	Search string
}

// Default returns a configuration with every level enabled and no tag or
// search constraints.
func Default() Config {
	var c Config
	for i := range c.Levels {
		c.Levels[i] = true
	}
	return c
}

// WithTagPattern compiles expr and returns a copy of c in pattern mode.
func (c Config) WithTagPattern(expr string) (Config, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return c, fmt.Errorf("compile tag pattern: %w", err)
	}
	c.TagPattern = re
	return c, nil
}

// ToggleLevel flips visibility of one level and returns the copy.
func (c Config) ToggleLevel(l record.Level) Config {
	if l >= 0 && int(l) < len(c.Levels) {
		c.Levels[l] = !c.Levels[l]
	}
	return c
}

// Matches reports whether rec is visible under c. Checks run cheapest and
// most selective first: level, then tag, then free text.
func (c Config) Matches(rec record.Record) bool {
	if int(rec.Level) >= len(c.Levels) || !c.Levels[rec.Level] {
		return false
	}
	if c.TagPattern != nil {
		if !c.TagPattern.MatchString(rec.Tag) {
			return false
		}
	} else if c.Tag != "" && !strings.Contains(rec.Tag, c.Tag) {
		return false
	}
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(rec.Message), needle) &&
			!strings.Contains(strings.ToLower(rec.Tag), needle) {
			return false
		}
	}
	return true
}

// Apply returns the records of snapshot that match c, preserving order.
func (c Config) Apply(snapshot []record.Record) []record.Record {
	visible := make([]record.Record, 0, len(snapshot))
	for _, rec := range snapshot {
		if c.Matches(rec) {
			visible = append(visible, rec)
		}
	}
	return visible
}
