package archive

import (
	"os"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/droidtail/droidtail/internal/record"
)

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestQueryTimeRange(t *testing.T) {
	w, dir := newTestWriter(t, 1<<20)

	base := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		rec := testRecord(i)
		rec.Time = base.Add(time.Duration(i) * time.Minute)
		w.Enqueue(rec)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := Query(dir, base.Add(3*time.Minute), base.Add(6*time.Minute))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Query returned %d records, want 4", len(got))
	}
	if got[0].Message != "message 0003" || got[3].Message != "message 0006" {
		t.Fatalf("Query window = %q .. %q", got[0].Message, got[3].Message)
	}

	// Zero bounds are unbounded.
	all, err := Query(dir, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("unbounded Query returned %d records, want 10", len(all))
	}
}

func TestReadAllSkipsCorruptLines(t *testing.T) {
	w, dir := newTestWriter(t, 1<<20)
	w.Enqueue(testRecord(0))
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, err := Files(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("Files: %v (%d files)", err, len(files))
	}
	appendLine(t, files[0], "not json at all")
	appendLine(t, files[0], `{"ts":"bogus","level":"I"}`)

	got, err := ReadAll(dir)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ReadAll returned %d records, want 1 (corrupt lines skipped)", len(got))
	}
}

func genStoredRecord() gopter.Gen {
	return gopter.CombineGens(
		gen.Int64Range(0, 1<<40),
		gen.IntRange(0, int(record.LevelError)),
		gen.AlphaString(),
		gen.AnyString(),
		gen.IntRange(0, 1<<16),
		gen.IntRange(0, 1<<16),
	).Map(func(vs []interface{}) record.Record {
		return record.Record{
			Time:     time.Unix(0, vs[0].(int64)).UTC(),
			Level:    record.Level(vs[1].(int)),
			Tag:      vs[2].(string),
			Message:  vs[3].(string),
			PID:      vs[4].(int),
			TID:      vs[5].(int),
			Origin:   record.OriginMain,
			DeviceID: "dev-1",
		}
	})
}

// Encoding a record and decoding the line must reproduce it field for field.
func TestCodecRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("round-trip equality", prop.ForAll(
		func(rec record.Record) bool {
			line, err := EncodeRecord(rec)
			if err != nil {
				return false
			}
			got, err := DecodeRecord(line)
			if err != nil {
				return false
			}
			if !got.Time.Equal(rec.Time) {
				return false
			}
			got.Time = rec.Time
			return got == rec
		},
		genStoredRecord(),
	))

	properties.TestingRun(t)
}
