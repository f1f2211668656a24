package processor

import (
	"github.com/UnendingLoop/TextSplitter/internal/differ"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
)

// Diff compares two texts line by line and returns the records serialized as a JSON array
func (p *Processor) Diff(oldText, newText string, ignoreWhitespace bool) (*model.Envelope[string], error) {
	return metrics.Track(p.rec, func() (string, int, error) {
		out, err := differ.Marshal(differ.Compare(oldText, newText, ignoreWhitespace))
		return out, 0, err
	})
}
