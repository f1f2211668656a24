package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/appmode"
	"github.com/UnendingLoop/TextSplitter/internal/logger"
	"github.com/UnendingLoop/TextSplitter/internal/parser"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// run mode, task and config from the command line
	appParam, cfg, err := parser.InitAppMode(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		if errors.Is(err, parser.ErrNothingToRun) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "textsplitter: %v\n", err)
		for _, hint := range apperr.Hints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		return apperr.ExitCode(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "textsplitter: failed to build logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// interrupt listener - context for the whole app
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appmode.Run(ctx, stop, appParam, cfg, log, os.Stdout); err != nil {
		log.Error("textsplitter failed",
			zap.String("mode", string(appParam.Mode)),
			zap.String("kind", apperr.Kind(err)),
			zap.Strings("hints", apperr.Hints(err)),
			zap.Error(err),
		)
		return apperr.ExitCode(err)
	}
	return 0
}
