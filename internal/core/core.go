// Package core owns the single ingestion point and fans parsed records out
// to the history ring, the archive writer, and (indirectly) the display.
//
// One producer goroutine drives Run. It never blocks on the display or on
// disk: the ring append is a bounded critical section and the archive
// hand-off is a non-blocking enqueue. Filtering is not applied here; the
// display evaluates the filter lazily against ring snapshots, so toggling
// filters never re-parses anything.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/droidtail/droidtail/internal/archive"
	"github.com/droidtail/droidtail/internal/filter"
	"github.com/droidtail/droidtail/internal/record"
	"github.com/droidtail/droidtail/internal/ring"
	"github.com/droidtail/droidtail/internal/source"
)

// State is the core's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StatePaused
	StateStopped
)

var stateNames = [...]string{"idle", "streaming", "paused", "stopped"}

func (s State) String() string {
	if s < StateIdle || s > StateStopped {
		return "unknown"
	}
	return stateNames[s]
}

// Stats are the counters the core maintains while streaming. Archive
// counters are folded in from the writer when read.
type Stats struct {
	Ingested        uint64
	ParseFailures   uint64
	SkippedByCutoff uint64
	PerLevel        [record.LevelError + 1]uint64
	ArchiveWritten  uint64
	ArchiveDropped  uint64
}

// Options configure a Core.
type Options struct {
	Format       record.Format
	Origin       record.Origin
	DeviceID     string
	Since        time.Time // records stamped before this are discarded at ingestion
	RingCapacity int
	Archive      *archive.Writer // nil disables archival
	Logger       *zap.SugaredLogger
}

// Core is the distribution hub between one ingestion source and the sinks.
type Core struct {
	parser   *record.Parser
	history  *ring.Buffer
	arch     *archive.Writer
	log      *zap.SugaredLogger
	origin   record.Origin
	deviceID string
	since    time.Time

	mu        sync.RWMutex
	state     State
	stats     Stats
	filterCfg filter.Config
	resumeCh  chan struct{}
	stopCh    chan struct{}

	// pending is the most recent record, held back from the archive until
	// the next line proves no continuation follows it.
	pending    record.Record
	hasPending bool

	finalize sync.Once
}

// New builds an idle core.
func New(opts Options) *Core {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Core{
		parser:    record.NewParser(opts.Format),
		history:   ring.New(opts.RingCapacity),
		arch:      opts.Archive,
		log:       logger,
		origin:    opts.Origin,
		deviceID:  opts.DeviceID,
		since:     opts.Since,
		state:     StateIdle,
		filterCfg: filter.Default(),
		stopCh:    make(chan struct{}),
	}
}

// Run consumes src until it terminates, the context is cancelled, or Stop
// is called. A clean end-of-stream returns nil; a source transport failure
// (device disconnect) is returned as an error. Either way the archive is
// drained, flushed, and closed before Run returns.
func (c *Core) Run(ctx context.Context, src source.Source) error {
	c.mu.Lock()
	c.state = StateStreaming
	c.mu.Unlock()

	defer c.shutdown(src)

	for {
		if !c.waitResumed(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-c.stopCh:
			return nil
		case line, ok := <-src.Lines():
			if !ok {
				if err := src.Err(); err != nil {
					c.log.Warnw("source terminated abnormally", "error", err)
					return fmt.Errorf("core: %w", err)
				}
				c.log.Infow("source ended")
				return nil
			}
			// A pause landing while this line was in flight holds it
			// here until resume, so nothing is lost or reordered. A stop
			// arriving instead ends the stream without ingesting it.
			if !c.waitResumed(ctx) {
				return nil
			}
			c.Ingest(line)
		}
	}
}

// Ingest parses one raw line and distributes the result. Parse failures
// are counted and logged, never fatal; continuation lines extend the most
// recent record.
func (c *Core) Ingest(line string) {
	rec, err := c.parser.Parse(line)
	if err != nil {
		c.ingestFailure(line)
		return
	}

	rec.Origin = c.origin
	rec.DeviceID = c.deviceID

	c.mu.Lock()
	if !c.since.IsZero() && rec.Time.Before(c.since) {
		c.stats.SkippedByCutoff++
		c.mu.Unlock()
		return
	}

	// The previous record can no longer grow a continuation; release it
	// to the archive.
	flushed, flush := c.pending, c.hasPending
	c.pending = rec
	c.hasPending = true

	c.stats.Ingested++
	c.stats.PerLevel[rec.Level]++
	c.mu.Unlock()

	c.history.Append(rec)
	if flush && c.arch != nil {
		c.arch.Enqueue(flushed)
	}
}

func (c *Core) ingestFailure(line string) {
	c.mu.Lock()
	if c.hasPending && record.IsContinuation(line) {
		c.pending.Message += "\n" + line
		extended := c.pending
		c.mu.Unlock()
		c.history.ReplaceLast(extended)
		return
	}
	c.stats.ParseFailures++
	c.mu.Unlock()
	c.log.Debugw("unparsable line", "line", line)
}

// Pause stops consuming the source without closing it. Lines emitted while
// paused stay in the source's own buffering; nothing is read or dropped.
func (c *Core) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStreaming {
		return
	}
	c.state = StatePaused
	c.resumeCh = make(chan struct{})
}

// Resume continues consumption exactly where Pause left off.
func (c *Core) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePaused {
		return
	}
	c.state = StateStreaming
	close(c.resumeCh)
	c.resumeCh = nil
}

// Stop ends streaming. The run loop drains and flushes the archive and
// releases the source before the core reaches StateStopped.
func (c *Core) Stop() {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	c.mu.Unlock()
}

// waitResumed blocks while paused. It reports false when the core should
// exit instead of reading another line.
func (c *Core) waitResumed(ctx context.Context) bool {
	c.mu.RLock()
	paused := c.state == StatePaused
	resume := c.resumeCh
	c.mu.RUnlock()

	if !paused {
		return true
	}
	select {
	case <-resume:
		return true
	case <-c.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// shutdown performs the ordered teardown: flush the held-back record,
// drain and close the archive, release the source.
func (c *Core) shutdown(src source.Source) {
	c.finalize.Do(func() {
		c.mu.Lock()
		flushed, flush := c.pending, c.hasPending
		c.hasPending = false
		c.mu.Unlock()

		if c.arch != nil {
			if flush {
				c.arch.Enqueue(flushed)
			}
			if err := c.arch.Close(); err != nil {
				c.log.Errorw("archive close failed", "error", err)
			}
		}
		if err := src.Close(); err != nil {
			c.log.Debugw("source close", "error", err)
		}

		c.mu.Lock()
		c.state = StateStopped
		c.mu.Unlock()
	})
}

// State reports the current lifecycle state.
func (c *Core) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Stats returns a copy of the counters, with archive progress folded in.
func (c *Core) Stats() Stats {
	c.mu.RLock()
	stats := c.stats
	c.mu.RUnlock()

	if c.arch != nil {
		st := c.arch.Status()
		stats.ArchiveWritten = st.Written
		stats.ArchiveDropped = st.Dropped
	}
	return stats
}

// Snapshot returns the current history window, oldest first.
func (c *Core) Snapshot() []record.Record {
	return c.history.Snapshot()
}

// History exposes the ring for capacity queries.
func (c *Core) History() *ring.Buffer { return c.history }

// ArchiveStatus returns the writer's status, or false when archival is off.
func (c *Core) ArchiveStatus() (archive.Status, bool) {
	if c.arch == nil {
		return archive.Status{}, false
	}
	return c.arch.Status(), true
}

// Filter returns the active filter configuration.
func (c *Core) Filter() filter.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filterCfg
}

// SetFilter replaces the filter configuration. The display observes it at
// its next predicate evaluation; nothing is re-ingested.
func (c *Core) SetFilter(cfg filter.Config) {
	c.mu.Lock()
	c.filterCfg = cfg
	c.mu.Unlock()
}
