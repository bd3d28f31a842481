package ui

import (
	"fmt"
	"unicode/utf8"

	"github.com/droidtail/droidtail/internal/record"
)

const tagWidth = 16

// formatLine renders one record as a fixed-prefix log line:
//
//	10:30:05.123 E/ActivityManager ( 585): ANR in com.example
func formatLine(rec record.Record) string {
	tag := rec.Tag
	if tag == "" {
		tag = "-"
	}
	if utf8.RuneCountInString(tag) > tagWidth {
		runes := []rune(tag)
		tag = string(runes[:tagWidth-1]) + "…"
	}

	ids := ""
	switch {
	case rec.PID != 0 && rec.TID != 0:
		ids = fmt.Sprintf(" (%d:%d)", rec.PID, rec.TID)
	case rec.PID != 0:
		ids = fmt.Sprintf(" (%d)", rec.PID)
	}

	return fmt.Sprintf("%s %s/%-*s%s: %s",
		rec.Time.Format("15:04:05.000"),
		rec.Level.Letter(),
		tagWidth, tag,
		ids,
		rec.Message,
	)
}
