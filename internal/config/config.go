package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/droidtail/droidtail/internal/record"
)

// Config is the validated configuration the application runs with.
type Config struct {
	Format       record.Format
	Buffer       record.Origin
	DeviceSerial string
	RingCapacity int
	Since        time.Time // zero means no cutoff

	Levels     []record.Level // enabled at startup; empty means all
	Tag        string
	TagPattern string
	Search     string

	ArchiveEnabled  bool
	ArchiveDir      string
	RotateSizeBytes int64
	Compress        bool

	ReplayPath string
	Follow     bool

	DiagnosticsLog string
}

const (
	defaultConfigPath  = "~/.config/droidtail/config.toml"
	defaultArchiveDir  = "~/.local/share/droidtail/archive"
	defaultDiagnostics = "~/.local/state/droidtail/droidtail.log"
	defaultRotateMB    = 10
)

type rawConfig struct {
	Format       string `toml:"format"`
	Buffer       string `toml:"buffer"`
	DeviceSerial string `toml:"device_serial"`
	RingCapacity int    `toml:"ring_capacity"`
	Since        string `toml:"since"`

	Levels     []string `toml:"levels"`
	Tag        string   `toml:"tag"`
	TagPattern string   `toml:"tag_pattern"`
	Search     string   `toml:"search"`

	Archive struct {
		Enabled      *bool  `toml:"enabled"`
		Dir          string `toml:"dir"`
		RotateSizeMB int64  `toml:"rotate_size_mb"`
		Compress     bool   `toml:"compress"`
	} `toml:"archive"`

	Replay struct {
		Path   string `toml:"path"`
		Follow bool   `toml:"follow"`
	} `toml:"replay"`

	DiagnosticsLog string `toml:"diagnostics_log"`
}

// Load locates and parses the config, falling back to defaults when the
// file is missing. The result is already validated against the closed
// value sets (formats, buffers, levels); cross-field rules live in
// Validate.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
	} else {
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Config{
		DeviceSerial: strings.TrimSpace(raw.DeviceSerial),
		Tag:          strings.TrimSpace(raw.Tag),
		TagPattern:   strings.TrimSpace(raw.TagPattern),
		Search:       strings.TrimSpace(raw.Search),
		RingCapacity: raw.RingCapacity,
		Compress:     raw.Archive.Compress,
		Follow:       raw.Replay.Follow,
	}

	format, ok := record.FormatFromName(raw.Format)
	if !ok {
		return Config{}, fmt.Errorf("unknown log format %q", raw.Format)
	}
	cfg.Format = format

	buffer := strings.TrimSpace(raw.Buffer)
	if buffer == "" {
		buffer = string(record.OriginMain)
	}
	origin, ok := record.OriginFromName(buffer)
	if !ok {
		return Config{}, fmt.Errorf("unknown buffer %q (want main, system, or crash)", raw.Buffer)
	}
	cfg.Buffer = origin

	if since := strings.TrimSpace(raw.Since); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return Config{}, fmt.Errorf("parse since cutoff: %w", err)
		}
		cfg.Since = t
	}

	for _, name := range raw.Levels {
		level, ok := record.LevelFromName(name)
		if !ok {
			return Config{}, fmt.Errorf("unknown level %q", name)
		}
		cfg.Levels = append(cfg.Levels, level)
	}

	cfg.ArchiveEnabled = true
	if raw.Archive.Enabled != nil {
		cfg.ArchiveEnabled = *raw.Archive.Enabled
	}

	dir := strings.TrimSpace(raw.Archive.Dir)
	if dir == "" {
		dir = defaultArchiveDir
	}
	cfg.ArchiveDir = mustExpand(dir)

	rotateMB := raw.Archive.RotateSizeMB
	if rotateMB == 0 {
		rotateMB = defaultRotateMB
	}
	if rotateMB < 0 {
		return Config{}, fmt.Errorf("rotation size must be positive, got %d MB", rotateMB)
	}
	cfg.RotateSizeBytes = rotateMB * 1024 * 1024

	if path := strings.TrimSpace(raw.Replay.Path); path != "" {
		cfg.ReplayPath = mustExpand(path)
	}

	diag := strings.TrimSpace(raw.DiagnosticsLog)
	if diag == "" {
		diag = defaultDiagnostics
	}
	cfg.DiagnosticsLog = mustExpand(diag)

	return cfg, nil
}

// Validate rejects combinations that must fail before streaming starts.
func (c Config) Validate() error {
	if c.ReplayPath != "" && c.DeviceSerial != "" {
		return fmt.Errorf("replay path and device serial are mutually exclusive")
	}
	if c.Follow && c.ReplayPath == "" {
		return fmt.Errorf("follow requires a replay path")
	}
	if c.RingCapacity < 0 {
		return fmt.Errorf("ring capacity must not be negative, got %d", c.RingCapacity)
	}
	if c.TagPattern != "" {
		if _, err := regexp.Compile(c.TagPattern); err != nil {
			return fmt.Errorf("invalid tag pattern: %w", err)
		}
	}
	if c.ArchiveEnabled && c.RotateSizeBytes <= 0 {
		return fmt.Errorf("rotation size must be positive, got %d bytes", c.RotateSizeBytes)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
