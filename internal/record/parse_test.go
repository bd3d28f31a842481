package record

import (
	"errors"
	"testing"
	"time"
)

func fixedParser(f Format) *Parser {
	p := NewParser(f)
	p.now = func() time.Time { return time.Date(2025, 8, 25, 10, 30, 0, 0, time.UTC) }
	return p
}

func TestParseBrief(t *testing.T) {
	p := fixedParser(FormatBrief)

	tests := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "error with padded pid",
			line: "E/ActivityManager(  585): ANR in com.example",
			want: Record{Level: LevelError, Tag: "ActivityManager", PID: 585, Message: "ANR in com.example"},
		},
		{
			name: "scenario line",
			line: "E/MyApp( 1234): boom",
			want: Record{Level: LevelError, Tag: "MyApp", PID: 1234, Message: "boom"},
		},
		{
			name: "empty message",
			line: "I/Zygote(  100):",
			want: Record{Level: LevelInfo, Tag: "Zygote", PID: 100, Message: ""},
		},
		{
			name: "message containing parens",
			line: "W/Net(42): timeout (3s) exceeded",
			want: Record{Level: LevelWarning, Tag: "Net", PID: 42, Message: "timeout (3s) exceeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Level != tt.want.Level || got.Tag != tt.want.Tag ||
				got.PID != tt.want.PID || got.Message != tt.want.Message {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
			if got.Time.IsZero() {
				t.Error("Parse() left Time unset")
			}
		})
	}
}

func TestParseBriefWithoutPID(t *testing.T) {
	p := fixedParser(FormatBrief)

	tests := []struct {
		line string
		want Record
	}{
		{"E/MyApp: boom", Record{Level: LevelError, Tag: "MyApp", Message: "boom"}},
		{"W/MyApp: careful", Record{Level: LevelWarning, Tag: "MyApp", Message: "careful"}},
		{"I/Other: ok", Record{Level: LevelInfo, Tag: "Other", Message: "ok"}},
		// Parens in the message must not be mistaken for a pid group.
		{"D/Timer: elapsed (3s)", Record{Level: LevelDebug, Tag: "Timer", Message: "elapsed (3s)"}},
	}
	for _, tt := range tests {
		got, err := p.Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.line, err)
		}
		if got.Level != tt.want.Level || got.Tag != tt.want.Tag || got.Message != tt.want.Message {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
		if got.PID != 0 {
			t.Errorf("Parse(%q) PID = %d, want 0 for a pid-less line", tt.line, got.PID)
		}
	}
}

func TestParseProcess(t *testing.T) {
	p := fixedParser(FormatProcess)

	got, err := p.Parse("W(  585) suspicious activity  (ActivityManager)")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Level != LevelWarning || got.PID != 585 || got.Tag != "ActivityManager" {
		t.Errorf("Parse() = %+v", got)
	}
	if got.Message != "suspicious activity" {
		t.Errorf("Message = %q, want %q", got.Message, "suspicious activity")
	}

	// Without a trailing tag group the whole remainder is the message.
	got, err = p.Parse("D(12) plain text")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Tag != "" || got.Message != "plain text" {
		t.Errorf("Parse() = %+v, want empty tag and message %q", got, "plain text")
	}
}

func TestParseThread(t *testing.T) {
	p := fixedParser(FormatThread)

	tests := []struct {
		line     string
		pid, tid int
	}{
		{"I(  585:  602) GC freed 1024 objects", 585, 602},
		{"E(42:0x2a) native crash", 42, 42},
	}
	for _, tt := range tests {
		got, err := p.Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.line, err)
		}
		if got.PID != tt.pid || got.TID != tt.tid {
			t.Errorf("Parse(%q) pid/tid = %d/%d, want %d/%d", tt.line, got.PID, got.TID, tt.pid, tt.tid)
		}
		if got.Tag != "" {
			t.Errorf("thread format should have no tag, got %q", got.Tag)
		}
	}
}

func TestParseTag(t *testing.T) {
	p := fixedParser(FormatTag)

	got, err := p.Parse("W/MyApp: careful")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Level != LevelWarning || got.Tag != "MyApp" || got.Message != "careful" {
		t.Errorf("Parse() = %+v", got)
	}
	if got.PID != 0 || got.TID != 0 {
		t.Errorf("tag format should leave pid/tid unset, got %d/%d", got.PID, got.TID)
	}
}

func TestParseRaw(t *testing.T) {
	p := fixedParser(FormatRaw)

	line := "anything at all, even E/Fake( 1): text"
	got, err := p.Parse(line)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Message != line || got.Level != LevelInfo || got.Tag != "" {
		t.Errorf("raw Parse() = %+v", got)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		format Format
		line   string
	}{
		{FormatBrief, ""},
		{FormatBrief, "garbage without any structure"},
		{FormatBrief, "X/Tag( 1): unknown level"},
		{FormatBrief, "E/Tag(notanumber): msg"},
		{FormatBrief, "E/Tag( 1 unterminated"},
		{FormatThread, "E( 12) missing tid"},
		{FormatTag, "E/NoColon"},
	}
	for _, tt := range tests {
		p := fixedParser(tt.format)
		_, err := p.Parse(tt.line)
		if err == nil {
			t.Errorf("Parse(%q) under %v: want error", tt.line, tt.format)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) error = %T, want *ParseError", tt.line, err)
		}
	}
}

func TestIsContinuation(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"\tat com.example.Main.run(Main.java:42)", true},
		{"    ... 12 more", true},
		{"at com.example.Main.run(Main.java:42)", true},
		{"Caused by: java.io.IOException", true},
		{"... 3 more", true},
		{"plain garbage", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsContinuation(tt.line); got != tt.want {
			t.Errorf("IsContinuation(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestLevelRoundTrips(t *testing.T) {
	for l := LevelVerbose; l <= LevelError; l++ {
		got, ok := LevelFromLetter(l.Letter()[0])
		if !ok || got != l {
			t.Errorf("LevelFromLetter(%q) = %v, %v", l.Letter(), got, ok)
		}
		got, ok = LevelFromName(l.String())
		if !ok || got != l {
			t.Errorf("LevelFromName(%q) = %v, %v", l.String(), got, ok)
		}
	}
	if _, ok := LevelFromLetter('F'); ok {
		t.Error("LevelFromLetter('F') accepted, want closed set")
	}
}

func TestLevelOrdering(t *testing.T) {
	order := []Level{LevelVerbose, LevelDebug, LevelInfo, LevelWarning, LevelError}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Fatalf("level order broken at %v >= %v", order[i-1], order[i])
		}
	}
}
