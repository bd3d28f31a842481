package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/droidtail/droidtail/internal/record"
)

// Files lists the archive files in dir in creation order. Filenames encode
// the creation timestamp and a sequence number, so name order is creation
// order.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("archive: read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, filePrefix) {
			continue
		}
		if !strings.HasSuffix(name, fileSuffix) && !strings.HasSuffix(name, fileSuffix+".gz") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// ReadAll replays every record archived under dir, in ingestion order.
// Lines that no longer decode are skipped rather than aborting the replay.
func ReadAll(dir string) ([]record.Record, error) {
	return Query(dir, time.Time{}, time.Time{})
}

// Query replays the records archived under dir whose timestamps fall within
// [from, to]. A zero bound means unbounded on that side.
func Query(dir string, from, to time.Time) ([]record.Record, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	var out []record.Record
	for _, path := range files {
		if err := readFile(path, func(rec record.Record) {
			if !from.IsZero() && rec.Time.Before(from) {
				return
			}
			if !to.IsZero() && rec.Time.After(to) {
				return
			}
			out = append(out, rec)
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readFile(path string, fn func(record.Record)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("archive: gunzip %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		rec, err := DecodeRecord(scanner.Bytes())
		if err != nil {
			continue
		}
		fn(rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("archive: read %s: %w", path, err)
	}
	return nil
}
