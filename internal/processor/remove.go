package processor

import (
	"strings"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/lines"
	"github.com/UnendingLoop/TextSplitter/internal/matcher"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
)

// RemoveLines drops repeated lines or lines (not) matching the pattern. RemovedCount is
// exactly the input line count minus the surviving line count.
func (p *Processor) RemoveLines(text, pattern string, mode model.RemoveMode, caseSensitive, useRegex, trimParts bool) (*model.Envelope[string], error) {
	var m matcher.Matcher
	switch mode {
	case model.RemoveDuplicates:
	case model.RemoveContaining, model.RemoveNotContaining:
		var err error
		m, err = matcher.New(pattern, matcher.ModeFor(useRegex), caseSensitive, p.opts)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperr.InvalidOption("remove mode", string(mode))
	}

	return metrics.Track(p.rec, func() (string, int, error) {
		src := lines.Split(text)

		var (
			kept []string
			err  error
		)
		if mode == model.RemoveDuplicates {
			kept = dedup(src, caseSensitive, trimParts)
		} else {
			kept, err = keepWhere(src, m, mode == model.RemoveContaining)
			if err != nil {
				return "", 0, err
			}
		}

		return lines.Join(kept), len(src) - len(kept), nil
	})
}

// dedup keeps the first occurrence of every key; with trimParts the kept line is trimmed too
func dedup(src []string, caseSensitive, trimParts bool) []string {
	seen := make(map[string]struct{}, len(src))
	kept := make([]string, 0, len(src))

	for _, line := range src {
		if trimParts {
			line = strings.TrimSpace(line)
		}
		key := line
		if !caseSensitive {
			key = strings.ToLower(line)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}

	return kept
}

func keepWhere(src []string, m matcher.Matcher, want bool) ([]string, error) {
	kept := make([]string, 0, len(src))
	for _, line := range src {
		ok, err := m.IsMatch(line)
		if err != nil {
			return nil, err
		}
		if ok == want {
			kept = append(kept, line)
		}
	}
	return kept, nil
}
