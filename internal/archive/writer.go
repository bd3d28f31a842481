package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/droidtail/droidtail/internal/record"
)

const (
	// DefaultQueueDepth bounds the hand-off between ingestion and the disk
	// worker. Overflow drops the oldest queued record, never the newest,
	// and never blocks the producer.
	DefaultQueueDepth = 1024

	filePrefix = "logcat_"
	fileSuffix = ".jsonl"
)

// Options configure a Writer.
type Options struct {
	Dir          string
	MaxFileBytes int64
	QueueDepth   int  // zero uses DefaultQueueDepth
	Compress     bool // gzip files as they rotate out
	Logger       *zap.SugaredLogger
}

// Status is a point-in-time view of the writer, safe to render.
type Status struct {
	CurrentFile  string
	CurrentBytes int64
	TotalBytes   int64
	FileCount    int
	Written      uint64
	Dropped      uint64
	LastErr      error
}

// Writer appends records to size-rotated JSONL files. Enqueue never blocks;
// a single worker goroutine owns all disk I/O. Write failures are latched
// into Status and never stop ingestion. Status reads counters only, so it
// stays responsive even when the filesystem stalls mid-write.
type Writer struct {
	dir      string
	maxBytes int64
	compress bool
	log      *zap.SugaredLogger

	queue chan record.Record
	done  chan struct{}
	once  sync.Once

	currentBytes atomic.Int64
	totalBytes   atomic.Int64
	fileCount    atomic.Int64
	written      atomic.Uint64
	dropped      atomic.Uint64

	// statusMu guards the two fields below and is never held across I/O.
	statusMu    sync.Mutex
	currentPath string
	lastErr     error

	// file and seq belong to the worker goroutine; Close touches them only
	// after the worker has exited.
	file *os.File
	seq  int
}

// New creates the archive directory, opens the first file, and starts the
// disk worker. Errors here are configuration failures and abort startup.
func New(opts Options) (*Writer, error) {
	if opts.MaxFileBytes <= 0 {
		return nil, fmt.Errorf("archive: rotation size must be positive, got %d", opts.MaxFileBytes)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create dir: %w", err)
	}

	depth := opts.QueueDepth
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	w := &Writer{
		dir:      opts.Dir,
		maxBytes: opts.MaxFileBytes,
		compress: opts.Compress,
		log:      logger,
		queue:    make(chan record.Record, depth),
		done:     make(chan struct{}),
	}
	if err := w.openNext(); err != nil {
		return nil, err
	}
	go w.run()
	return w, nil
}

// Enqueue hands rec to the disk worker. When the queue is full the oldest
// queued-but-unwritten record is discarded and counted; the caller is never
// blocked. Must not be called after Close.
func (w *Writer) Enqueue(rec record.Record) {
	select {
	case w.queue <- rec:
		return
	default:
	}
	select {
	case <-w.queue:
		w.dropped.Add(1)
	default:
	}
	select {
	case w.queue <- rec:
	default:
		w.dropped.Add(1)
	}
}

// Close drains the queue, flushes, and closes the current file. Safe to
// call more than once.
func (w *Writer) Close() error {
	w.once.Do(func() { close(w.queue) })
	<-w.done

	if w.file == nil {
		return nil
	}
	var err error
	if syncErr := w.file.Sync(); syncErr != nil {
		err = syncErr
	}
	if closeErr := w.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	w.file = nil
	return err
}

// Status returns a copy of the writer's counters and error state. It never
// waits on the worker or the disk.
func (w *Writer) Status() Status {
	w.statusMu.Lock()
	path, lastErr := w.currentPath, w.lastErr
	w.statusMu.Unlock()
	return Status{
		CurrentFile:  path,
		CurrentBytes: w.currentBytes.Load(),
		TotalBytes:   w.totalBytes.Load(),
		FileCount:    int(w.fileCount.Load()),
		Written:      w.written.Load(),
		Dropped:      w.dropped.Load(),
		LastErr:      lastErr,
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for rec := range w.queue {
		w.write(rec)
	}
}

func (w *Writer) write(rec record.Record) {
	line, err := EncodeRecord(rec)
	if err != nil {
		w.setErr(fmt.Errorf("archive: encode: %w", err))
		return
	}

	n := int64(len(line)) + 1
	// The record that would push the file past the threshold opens the
	// next file instead; records never span two files.
	if w.currentBytes.Load() > 0 && w.currentBytes.Load()+n > w.maxBytes {
		if err := w.rotate(); err != nil {
			w.setErr(err)
			return
		}
	}

	if _, err := w.file.Write(append(line, '\n')); err != nil {
		w.setErr(fmt.Errorf("archive: write: %w", err))
		return
	}
	w.currentBytes.Add(n)
	w.totalBytes.Add(n)
	w.written.Add(1)

	w.statusMu.Lock()
	w.lastErr = nil
	w.statusMu.Unlock()
}

func (w *Writer) setErr(err error) {
	w.statusMu.Lock()
	w.lastErr = err
	w.statusMu.Unlock()
	w.log.Errorw("archive error", "error", err)
}

// rotate closes the current file and opens the next one. Worker only.
func (w *Writer) rotate() error {
	w.statusMu.Lock()
	closed := w.currentPath
	w.statusMu.Unlock()

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("archive: sync before rotate: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("archive: close before rotate: %w", err)
	}
	w.file = nil

	if err := w.openNext(); err != nil {
		return err
	}
	if w.compress {
		if err := compressFile(closed); err != nil {
			// The uncompressed file is still intact; log and move on.
			w.log.Warnw("compress rotated file failed", "file", closed, "error", err)
		}
	}
	w.statusMu.Lock()
	current := w.currentPath
	w.statusMu.Unlock()
	w.log.Infow("rotated archive file", "closed", closed, "current", current)
	return nil
}

func (w *Writer) openNext() error {
	w.seq++
	name := fmt.Sprintf("%s%s_%04d%s", filePrefix, time.Now().Format("20060102_150405"), w.seq, fileSuffix)
	path := filepath.Join(w.dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	w.file = file
	w.currentBytes.Store(0)
	w.fileCount.Add(1)

	w.statusMu.Lock()
	w.currentPath = path
	w.statusMu.Unlock()
	return nil
}

// compressFile gzips path in place, replacing it with path.gz.
func compressFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
