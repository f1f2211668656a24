// Package metrics wraps an operation into a result envelope with timing and memory figures
package metrics

import (
	"errors"
	"os"
	"time"

	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Sampler reports the resident memory of the current process in bytes
type Sampler interface {
	RSS() (uint64, error)
}

type processSampler struct {
	proc *process.Process
}

func NewProcessSampler() Sampler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return processSampler{}
	}
	return processSampler{proc: proc}
}

func (s processSampler) RSS() (uint64, error) {
	if s.proc == nil {
		return 0, errors.New("process handle unavailable")
	}
	info, err := s.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// Recorder samples before and after each tracked call. Safe for concurrent use as long as
// the Sampler is.
type Recorder struct {
	sampler Sampler
	printer *message.Printer
}

func NewRecorder(s Sampler) *Recorder {
	if s == nil {
		s = NewProcessSampler()
	}
	return &Recorder{
		sampler: s,
		printer: message.NewPrinter(language.English),
	}
}

// Track runs fn and wraps its output and removed-line count. An error from fn is returned
// unchanged and no envelope is produced.
func Track[T any](r *Recorder, fn func() (T, int, error)) (*model.Envelope[T], error) {
	before := r.rss()
	start := time.Now()

	result, removed, err := fn()
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	after := r.rss()

	return &model.Envelope[T]{
		Result:       result,
		RemovedCount: removed,
		Metrics: model.Metrics{
			ExecutionTimeMs: float64(elapsed.Nanoseconds()) / float64(time.Millisecond),
			MemoryUsageKB:   after / 1024,
			MemoryDeltaStr:  r.FormatDelta(int64(after) - int64(before)),
		},
	}, nil
}

// FormatDelta prints a byte count with thousands separators, e.g. -12,288
func (r *Recorder) FormatDelta(delta int64) string {
	return r.printer.Sprintf("%d", delta)
}

// rss never fails: memory figures are informational, a failed sample reads as zero
func (r *Recorder) rss() uint64 {
	v, err := r.sampler.RSS()
	if err != nil {
		return 0
	}
	return v
}
