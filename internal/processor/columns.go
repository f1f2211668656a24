package processor

import (
	"strings"

	"github.com/UnendingLoop/TextSplitter/internal/lines"
	"github.com/UnendingLoop/TextSplitter/internal/matcher"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
)

// SplitColumns cuts every line at the delimiter and regroups the parts by index. Each returned
// column holds one newline-joined row per input line; rows short of parts contribute "".
func (p *Processor) SplitColumns(text, delimiter string, trimParts, useRegex bool) (*model.Envelope[[]string], error) {
	m, err := matcher.New(delimiter, matcher.ModeFor(useRegex), true, p.opts)
	if err != nil {
		return nil, err
	}

	return metrics.Track(p.rec, func() ([]string, int, error) {
		src := lines.Split(text)
		var columns [][]string

		for row, line := range src {
			parts, err := m.Split(line)
			if err != nil {
				return nil, 0, err
			}

			for i, part := range parts {
				if i == len(columns) {
					// a column first seen on this row still needs a cell for every earlier row
					columns = append(columns, make([]string, row, len(src)))
				}
				if trimParts {
					part = strings.TrimSpace(part)
				}
				columns[i] = append(columns[i], part)
			}

			for i := len(parts); i < len(columns); i++ {
				columns[i] = append(columns[i], "")
			}
		}

		result := make([]string, 0, len(columns))
		for _, col := range columns {
			result = append(result, lines.Join(col))
		}
		return result, 0, nil
	})
}

// Connect glues line i of text1 and line i of text2 with the separator; the shorter text
// contributes empty lines
func (p *Processor) Connect(text1, text2, separator string) string {
	lines1 := lines.Split(text1)
	lines2 := lines.Split(text2)

	n := max(len(lines1), len(lines2))
	result := make([]string, n)
	for i := range n {
		var left, right string
		if i < len(lines1) {
			left = lines1[i]
		}
		if i < len(lines2) {
			right = lines2[i]
		}
		result[i] = left + separator + right
	}

	return lines.Join(result)
}
