package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/droidtail/droidtail/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	replayPath := flag.String("replay", "", "replay a capture file instead of streaming from adb")
	follow := flag.Bool("follow", false, "with -replay, keep reading as the file grows")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		ReplayPath: *replayPath,
		Follow:     *follow,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "droidtail: %v\n", err)
		return 1
	}
	return 0
}
