// Package processor implements the text operations and dispatches incoming tasks to them
package processor

import (
	"context"
	"time"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/matcher"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Processor holds only immutable settings, so one value can serve concurrent tasks
type Processor struct {
	opts matcher.Options
	rec  *metrics.Recorder
	log  *zap.Logger
}

func New(opts matcher.Options, rec *metrics.Recorder, log *zap.Logger) *Processor {
	if rec == nil {
		rec = metrics.NewRecorder(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{opts: opts, rec: rec, log: log}
}

// ProcessInput runs one task and fingerprints its output so that nodes can vote on it
func (p *Processor) ProcessInput(ctx context.Context, task *model.TaskDTO) (*model.TaskResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := model.TaskResult{
		TaskID: task.TaskID,
		Op:     task.Op,
	}
	prm := task.Param

	var err error
	switch task.Op {
	case model.OpSplit:
		var env *model.Envelope[[]string]
		env, err = p.SplitColumns(task.Text, prm.Delimiter, prm.TrimParts, prm.UseRegex)
		if err == nil {
			result.Output = env.Result
			result.RemovedCount = env.RemovedCount
			result.Metrics = &env.Metrics
		}
	case model.OpConnect:
		result.Output = []string{p.Connect(task.Text, task.Text2, prm.Separator)}
	case model.OpFilter:
		err = textResult(&result)(p.Filter(task.Text, prm.Pattern, prm.FilterMode, prm.CaseSensitive, prm.SplitMatches))
	case model.OpRemove:
		err = textResult(&result)(p.RemoveLines(task.Text, prm.Pattern, prm.RemoveMode, prm.CaseSensitive, prm.UseRegex, prm.TrimParts))
	case model.OpDiff:
		err = textResult(&result)(p.Diff(task.Text, task.Text2, prm.IgnoreWhitespace))
	case model.OpSort:
		err = textResult(&result)(p.SortLines(task.Text, prm.SortMode, prm.CaseSensitive, prm.Seed))
	case model.OpCase:
		err = textResult(&result)(p.ConvertCase(task.Text, prm.CaseStyle))
	default:
		err = apperr.InvalidOption("operation", string(task.Op))
	}
	if err != nil {
		p.log.Debug("task failed", zap.String("tid", task.TaskID), zap.String("op", string(task.Op)), zap.Error(err))
		return nil, err
	}

	result.HashSumm = hasher(result.Output)

	p.log.Debug("task processed",
		zap.String("tid", task.TaskID),
		zap.String("op", string(task.Op)),
		zap.Int("removed", result.RemovedCount),
		zap.Duration("took", time.Since(start)),
	)

	return &result, nil
}

// textResult adapts a single-string envelope into the task result
func textResult(result *model.TaskResult) func(*model.Envelope[string], error) error {
	return func(env *model.Envelope[string], err error) error {
		if err != nil {
			return err
		}
		result.Output = []string{env.Result}
		result.RemovedCount = env.RemovedCount
		result.Metrics = &env.Metrics
		return nil
	}
}

// hasher separates parts with a zero byte, so ["ab"] and ["a","b"] differ
func hasher(output []string) uint64 {
	hs := xxhash.New()
	for i, s := range output {
		if i > 0 {
			_, _ = hs.Write([]byte{0})
		}
		_, _ = hs.WriteString(s)
	}
	return hs.Sum64()
}

// Checksum is the fingerprint ProcessInput stores in TaskResult.HashSumm
func Checksum(output []string) uint64 {
	return hasher(output)
}
