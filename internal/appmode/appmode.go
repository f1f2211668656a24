// Package appmode runs the app in one of its modes: serving node, local one-shot or remote one-shot
package appmode

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/config"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/UnendingLoop/TextSplitter/internal/processor"
	"go.uber.org/zap"
)

// Run dispatches by mode; one-shot modes print the output to out
func Run(ctx context.Context, stop context.CancelFunc, ai *model.AppInit, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	var (
		res *model.TaskResult
		err error
	)

	switch ai.Mode {
	case model.ModeServe:
		return RunServer(ctx, stop, cfg, log)
	case model.ModeLocal:
		res, err = RunLocal(ctx, cfg, &ai.Task, log)
	case model.ModeRemote:
		res, err = RunRemote(ctx, cfg, &ai.Task, log)
	default:
		return apperr.InvalidOption("mode", string(ai.Mode))
	}
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("tid", res.TaskID),
		zap.String("op", string(res.Op)),
		zap.Int("removed_count", res.RemovedCount),
	}
	if res.Metrics != nil {
		fields = append(fields,
			zap.Float64("execution_time_ms", res.Metrics.ExecutionTimeMs),
			zap.Uint64("memory_usage_kb", res.Metrics.MemoryUsageKB),
			zap.String("memory_delta", res.Metrics.MemoryDeltaStr),
		)
	}
	log.Info("operation finished", fields...)

	return Print(out, res)
}

// RunLocal executes the task in-process
func RunLocal(ctx context.Context, cfg *config.Config, task *model.TaskDTO, log *zap.Logger) (*model.TaskResult, error) {
	proc := processor.New(cfg.MatcherOptions(), metrics.NewRecorder(nil), log)
	return proc.ProcessInput(ctx, task)
}

// Print writes the output parts separated by a blank line, ending with a newline
func Print(w io.Writer, res *model.TaskResult) error {
	text := strings.Join(res.Output, "\n\n")
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := fmt.Fprint(w, text)
	return err
}
