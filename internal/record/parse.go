package record

import (
	"strconv"
	"strings"
	"time"
)

// Format selects the logcat output variant the parser expects.
type Format int

const (
	FormatBrief Format = iota
	FormatProcess
	FormatThread
	FormatTag
	FormatRaw
)

var formatNames = [...]string{"brief", "process", "thread", "tag", "raw"}

func (f Format) String() string {
	if f < FormatBrief || f > FormatRaw {
		return "brief"
	}
	return formatNames[f]
}

// FormatFromName validates a configured format name.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "brief", "":
		return FormatBrief, true
	case "process":
		return FormatProcess, true
	case "thread":
		return FormatThread, true
	case "tag":
		return FormatTag, true
	case "raw":
		return FormatRaw, true
	}
	return 0, false
}

// Parser turns raw logcat lines into Records for one format variant. Parse is
// stateless per call; the only ambient input is the clock used to stamp
// formats that carry no timestamp of their own.
type Parser struct {
	format Format
	now    func() time.Time
}

// NewParser returns a parser for the given format variant.
func NewParser(format Format) *Parser {
	return &Parser{format: format, now: time.Now}
}

// Format reports the variant this parser was built for.
func (p *Parser) Format() Format { return p.format }

// Parse interprets one line under the active format. Malformed lines yield a
// *ParseError; the caller decides whether to count, display, or drop them.
func (p *Parser) Parse(line string) (Record, error) {
	switch p.format {
	case FormatRaw:
		return Record{Time: p.now(), Level: LevelInfo, Message: line}, nil
	case FormatBrief:
		return p.parseBrief(line)
	case FormatProcess:
		return p.parseProcess(line)
	case FormatThread:
		return p.parseThread(line)
	case FormatTag:
		return p.parseTag(line)
	}
	return Record{}, &ParseError{Line: line, Reason: "unknown format"}
}

// IsContinuation reports whether an unparsable line should extend the
// previous record's message instead of becoming a ParseError. The rule:
// indented lines (Java stack frames as logcat prints them) and the
// well-known unindented trace markers continue the prior record.
func IsContinuation(line string) bool {
	if line == "" {
		return false
	}
	if line[0] == ' ' || line[0] == '\t' {
		return true
	}
	return strings.HasPrefix(line, "at ") ||
		strings.HasPrefix(line, "Caused by:") ||
		strings.HasPrefix(line, "... ")
}

// parseBrief handles "E/Tag(  123): message". Producers that strip the pid
// column emit "E/Tag: message"; those lines fall through to the tag layout.
func (p *Parser) parseBrief(line string) (Record, error) {
	level, rest, err := splitLevel(line, '/')
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: err.Error()}
	}
	open := strings.IndexByte(rest, '(')
	colon := strings.IndexByte(rest, ':')
	if open < 0 || (colon >= 0 && colon < open) {
		return p.parseTag(line)
	}
	tag := strings.TrimSpace(rest[:open])
	end := strings.IndexByte(rest[open:], ')')
	if end < 0 {
		return Record{}, &ParseError{Line: line, Reason: "unterminated pid"}
	}
	end += open
	pid, err := parseID(rest[open+1 : end])
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: "bad pid"}
	}
	msg := strings.TrimPrefix(rest[end+1:], ":")
	msg = strings.TrimPrefix(msg, " ")
	return Record{Time: p.now(), Level: level, Tag: tag, PID: pid, Message: msg}, nil
}

// parseProcess handles "E(  123) message  (Tag)".
func (p *Parser) parseProcess(line string) (Record, error) {
	level, rest, err := splitLevel(line, '(')
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: err.Error()}
	}
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return Record{}, &ParseError{Line: line, Reason: "unterminated pid"}
	}
	pid, err := parseID(rest[:end])
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: "bad pid"}
	}
	msg := strings.TrimPrefix(rest[end+1:], " ")
	var tag string
	if strings.HasSuffix(msg, ")") {
		if open := strings.LastIndex(msg, "("); open >= 0 {
			tag = msg[open+1 : len(msg)-1]
			msg = strings.TrimRight(msg[:open], " ")
		}
	}
	return Record{Time: p.now(), Level: level, Tag: tag, PID: pid, Message: msg}, nil
}

// parseThread handles "E(  123:  456) message". The tid may be hex
// (older logcat prints 0x-prefixed thread ids).
func (p *Parser) parseThread(line string) (Record, error) {
	level, rest, err := splitLevel(line, '(')
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: err.Error()}
	}
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return Record{}, &ParseError{Line: line, Reason: "unterminated pid"}
	}
	ids := strings.SplitN(rest[:end], ":", 2)
	if len(ids) != 2 {
		return Record{}, &ParseError{Line: line, Reason: "missing tid"}
	}
	pid, err := parseID(ids[0])
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: "bad pid"}
	}
	tid, err := parseID(ids[1])
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: "bad tid"}
	}
	msg := strings.TrimPrefix(rest[end+1:], " ")
	return Record{Time: p.now(), Level: level, PID: pid, TID: tid, Message: msg}, nil
}

// parseTag handles "E/Tag: message".
func (p *Parser) parseTag(line string) (Record, error) {
	level, rest, err := splitLevel(line, '/')
	if err != nil {
		return Record{}, &ParseError{Line: line, Reason: err.Error()}
	}
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return Record{}, &ParseError{Line: line, Reason: "missing tag separator"}
	}
	tag := strings.TrimSpace(rest[:colon])
	msg := strings.TrimPrefix(rest[colon+1:], " ")
	return Record{Time: p.now(), Level: level, Tag: tag, Message: msg}, nil
}

// splitLevel reads the leading level letter and the separator that follows
// it, returning the remainder of the line.
func splitLevel(line string, sep byte) (Level, string, error) {
	if len(line) < 2 || line[1] != sep {
		return 0, "", &prefixError{}
	}
	level, ok := LevelFromLetter(line[0])
	if !ok {
		return 0, "", &prefixError{}
	}
	return level, line[2:], nil
}

type prefixError struct{}

func (*prefixError) Error() string { return "missing level prefix" }

// parseID accepts the decimal (and, for tids, 0x-hex) forms logcat emits,
// ignoring the column padding.
func parseID(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
