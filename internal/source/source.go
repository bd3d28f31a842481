// Package source produces the raw line stream the distribution core
// consumes. A source is either the spawned adb logcat process, a replayed
// file, or a followed (growing) file. All three deliver lines over a
// channel; closing the channel signals end-of-stream, and Err distinguishes
// a clean end from a transport failure such as a device disconnect.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/hpcloud/tail"

	"github.com/droidtail/droidtail/internal/record"
)

// Source is a continuous sequence of raw text lines.
type Source interface {
	// Lines yields raw lines until the source terminates, at which point
	// the channel is closed.
	Lines() <-chan string

	// Err reports why the stream ended. It is nil before Lines is closed
	// and nil after a clean end-of-stream.
	Err() error

	// Close releases the underlying handle. Safe to call while a reader
	// is still draining Lines.
	Close() error
}

// lineStream is the shared channel-and-error plumbing.
type lineStream struct {
	lines chan string
	done  chan struct{}
	stop  sync.Once
	mu    sync.Mutex
	err   error
}

func newLineStream() lineStream {
	return lineStream{lines: make(chan string), done: make(chan struct{})}
}

func (s *lineStream) Lines() <-chan string { return s.lines }

func (s *lineStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// send delivers one line, aborting when the stream is halted so a reader
// goroutine never outlives its consumer.
func (s *lineStream) send(line string) bool {
	select {
	case s.lines <- line:
		return true
	case <-s.done:
		return false
	}
}

// halt releases any reader goroutine blocked in send. Safe to call twice.
func (s *lineStream) halt() {
	s.stop.Do(func() { close(s.done) })
}

func (s *lineStream) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.lines)
}

// Process streams the stdout of a spawned adb logcat.
type Process struct {
	lineStream
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// StartProcess spawns adb logcat for the given buffer and format, plus an
// optional device serial.
func StartProcess(format record.Format, origin record.Origin, serial string) (*Process, error) {
	args := []string{"logcat", "-v", format.String(), "-b", string(origin)}
	if serial != "" {
		args = append([]string{"-s", serial}, args...)
	}
	cmd := exec.Command("adb", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("source: pipe adb stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("source: start adb logcat: %w", err)
	}

	p := &Process{lineStream: newLineStream(), cmd: cmd, stdout: stdout}
	go p.read()
	return p, nil
}

func (p *Process) read() {
	scanner := bufio.NewScanner(p.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if !p.send(scanner.Text()) {
			p.finish(nil)
			return
		}
	}

	scanErr := scanner.Err()
	waitErr := p.cmd.Wait()
	switch {
	case scanErr != nil:
		p.finish(fmt.Errorf("source: read adb stream: %w", scanErr))
	case waitErr != nil:
		// logcat exiting nonzero means the device went away, not a
		// normal end of the log.
		p.finish(fmt.Errorf("source: adb disconnected: %w", waitErr))
	default:
		p.finish(nil)
	}
}

// Close terminates the adb process.
func (p *Process) Close() error {
	p.halt()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	return p.stdout.Close()
}

// File replays a finite file line by line, then ends cleanly.
type File struct {
	lineStream
	file *os.File
}

// OpenFile opens path for replay.
func OpenFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open replay file: %w", err)
	}
	f := &File{lineStream: newLineStream(), file: file}
	go f.read()
	return f, nil
}

func (f *File) read() {
	scanner := bufio.NewScanner(f.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if !f.send(scanner.Text()) {
			f.finish(nil)
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		f.finish(fmt.Errorf("source: read replay file: %w", err))
		return
	}
	f.finish(nil)
}

func (f *File) Close() error {
	f.halt()
	return f.file.Close()
}

// Follow tails a growing file, delivering new lines as they are appended.
type Follow struct {
	lineStream
	tailer *tail.Tail
}

// FollowFile starts following path from its current end.
func FollowFile(path string) (*Follow, error) {
	tailer, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
	})
	if err != nil {
		return nil, fmt.Errorf("source: follow %s: %w", path, err)
	}
	f := &Follow{lineStream: newLineStream(), tailer: tailer}
	go f.read()
	return f, nil
}

func (f *Follow) read() {
	for line := range f.tailer.Lines {
		if line.Err != nil {
			f.finish(fmt.Errorf("source: follow: %w", line.Err))
			return
		}
		if !f.send(line.Text) {
			f.finish(nil)
			return
		}
	}
	f.finish(f.tailer.Err())
}

func (f *Follow) Close() error {
	f.halt()
	return f.tailer.Stop()
}
