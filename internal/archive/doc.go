// Package archive persists ingested records to size-rotated JSONL files
// and replays them later.
//
// # Layout
//
// Each file holds one JSON object per line with the fields ts, device_id,
// origin, level, tag, pid, tid, and message. Filenames follow
//
//	logcat_<YYYYMMDD_HHMMSS>_<seq>.jsonl
//
// so lexicographic order is creation order, and concatenating the files in
// name order reproduces ingestion order exactly.
//
// # Rotation
//
// A record that would push the current file past the configured byte
// threshold is written to the next file instead; no record is ever split
// across two files. When compression is enabled, files are gzipped as they
// rotate out and the reader decompresses them transparently.
//
// # Concurrency
//
// All disk I/O happens on a single worker goroutine fed through a bounded
// queue. Enqueue never blocks the ingestion path: if the worker falls
// behind, the oldest queued record is dropped and counted, because the
// live view takes priority over archival completeness. Write failures are
// latched into Status for the UI and never interrupt streaming.
package archive
