package processor

import (
	"strings"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/lines"
	"github.com/UnendingLoop/TextSplitter/internal/matcher"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
)

// Filter deletes (remove) or keeps only (extract) the regexp matches of every non-blank line.
// Lines left empty are dropped. The removed count is always zero.
func (p *Processor) Filter(text, pattern string, mode model.FilterMode, caseSensitive, splitMatches bool) (*model.Envelope[string], error) {
	if mode != model.FilterRemove && mode != model.FilterExtract {
		return nil, apperr.InvalidOption("filter mode", string(mode))
	}

	m, err := matcher.New(pattern, matcher.Regex, caseSensitive, p.opts)
	if err != nil {
		return nil, err
	}

	sep := ""
	if splitMatches {
		sep = "\n"
	}

	return metrics.Track(p.rec, func() (string, int, error) {
		src := lines.Split(text)
		kept := make([]string, 0, len(src))

		for _, line := range src {
			if lines.IsBlank(line) {
				continue
			}

			var res string
			switch mode {
			case model.FilterRemove:
				res, err = m.ReplaceAll(line, "")
			default:
				var found []string
				found, err = m.FindAll(line)
				res = strings.Join(found, sep)
			}
			if err != nil {
				return "", 0, err
			}

			if res != "" {
				kept = append(kept, res)
			}
		}

		return lines.Join(kept), 0, nil
	})
}
