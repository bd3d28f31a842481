// Package app wires configuration, the distribution core, an ingestion
// source, and the TUI into a running application.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/droidtail/droidtail/internal/archive"
	"github.com/droidtail/droidtail/internal/config"
	"github.com/droidtail/droidtail/internal/core"
	"github.com/droidtail/droidtail/internal/filter"
	"github.com/droidtail/droidtail/internal/record"
	"github.com/droidtail/droidtail/internal/source"
	"github.com/droidtail/droidtail/internal/ui"
)

// Options configure the droidtail application.
type Options struct {
	ConfigPath string
	ReplayPath string // overrides the config's replay path
	Follow     bool
}

// Run boots the pipeline and the TUI until the context is cancelled or the
// user quits. Configuration problems fail here, before streaming starts.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.ReplayPath != "" {
		cfg.ReplayPath = opts.ReplayPath
		cfg.DeviceSerial = ""
	}
	if opts.Follow {
		cfg.Follow = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.DiagnosticsLog)
	defer func() { _ = logger.Sync() }()

	var arch *archive.Writer
	if cfg.ArchiveEnabled {
		arch, err = archive.New(archive.Options{
			Dir:          cfg.ArchiveDir,
			MaxFileBytes: cfg.RotateSizeBytes,
			Compress:     cfg.Compress,
			Logger:       logger,
		})
		if err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
	}

	deviceID := cfg.DeviceSerial
	if deviceID == "" {
		deviceID = "local-" + uuid.NewString()[:8]
	}

	fc, err := startupFilter(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c := core.New(core.Options{
		Format:       cfg.Format,
		Origin:       cfg.Buffer,
		DeviceID:     deviceID,
		Since:        cfg.Since,
		RingCapacity: cfg.RingCapacity,
		Archive:      arch,
		Logger:       logger,
	})
	c.SetFilter(fc)

	src, err := openSource(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx, src) }()

	uiErr := ui.Run(ui.Options{Context: ctx, Core: c})

	c.Stop()
	if err := <-runErr; err != nil {
		logger.Warnw("pipeline ended with error", "error", err)
		return err
	}
	return uiErr
}

func openSource(cfg config.Config) (source.Source, error) {
	switch {
	case cfg.ReplayPath != "" && cfg.Follow:
		return source.FollowFile(cfg.ReplayPath)
	case cfg.ReplayPath != "":
		return source.OpenFile(cfg.ReplayPath)
	default:
		return source.StartProcess(cfg.Format, cfg.Buffer, cfg.DeviceSerial)
	}
}

// startupFilter translates the configured filter surface into the initial
// filter.Config. Level list empty means all levels enabled.
func startupFilter(cfg config.Config) (filter.Config, error) {
	fc := filter.Default()
	if len(cfg.Levels) > 0 {
		fc.Levels = [record.LevelError + 1]bool{}
		for _, l := range cfg.Levels {
			fc.Levels[l] = true
		}
	}
	fc.Tag = cfg.Tag
	fc.Search = cfg.Search
	if cfg.TagPattern != "" {
		withPattern, err := fc.WithTagPattern(cfg.TagPattern)
		if err != nil {
			return filter.Config{}, fmt.Errorf("tag pattern: %w", err)
		}
		fc = withPattern
	}
	return fc, nil
}

// newLogger writes diagnostics to a file so they never corrupt the TUI.
// Falling back to a no-op logger is deliberate: losing diagnostics must
// not keep the viewer from starting.
func newLogger(path string) *zap.SugaredLogger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zap.NewNop().Sugar()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
