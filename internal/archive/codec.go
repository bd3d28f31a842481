package archive

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fastjson"

	"github.com/droidtail/droidtail/internal/record"
)

// storedRecord is the on-disk shape: one self-contained JSON object per
// line. Field additions are forward-compatible; nothing is ever removed.
type storedRecord struct {
	Time     string `json:"ts"`
	DeviceID string `json:"device_id"`
	Origin   string `json:"origin"`
	Level    string `json:"level"`
	Tag      string `json:"tag"`
	PID      int    `json:"pid,omitempty"`
	TID      int    `json:"tid,omitempty"`
	Message  string `json:"message"`
}

// EncodeRecord serializes rec to a single archive line, without the
// trailing newline.
func EncodeRecord(rec record.Record) ([]byte, error) {
	return json.Marshal(storedRecord{
		Time:     rec.Time.Format(time.RFC3339Nano),
		DeviceID: rec.DeviceID,
		Origin:   string(rec.Origin),
		Level:    rec.Level.Letter(),
		Tag:      rec.Tag,
		PID:      rec.PID,
		TID:      rec.TID,
		Message:  rec.Message,
	})
}

var parserPool fastjson.ParserPool

// DecodeRecord parses one archive line back into a record.
func DecodeRecord(line []byte) (record.Record, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(line)
	if err != nil {
		return record.Record{}, fmt.Errorf("parse archive line: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes("ts")))
	if err != nil {
		return record.Record{}, fmt.Errorf("parse archive timestamp: %w", err)
	}
	level, ok := record.LevelFromName(string(v.GetStringBytes("level")))
	if !ok {
		return record.Record{}, fmt.Errorf("archive line has unknown level %q", v.GetStringBytes("level"))
	}

	return record.Record{
		Time:     ts,
		DeviceID: string(v.GetStringBytes("device_id")),
		Origin:   record.Origin(v.GetStringBytes("origin")),
		Level:    level,
		Tag:      string(v.GetStringBytes("tag")),
		PID:      v.GetInt("pid"),
		TID:      v.GetInt("tid"),
		Message:  string(v.GetStringBytes("message")),
	}, nil
}
