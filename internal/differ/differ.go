// Package differ classifies every line of two texts as unchanged, moved, removed or added.
//
// Matching is positional first and frequency based second: identical content at the same
// index is unchanged, remaining identical content is paired in original relative order and
// reported as moved. This is deliberately not an LCS diff.
package differ

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/UnendingLoop/TextSplitter/internal/lines"
	"github.com/UnendingLoop/TextSplitter/internal/model"
)

// Compare returns one record per unpaired line plus one per matched pair, ordered by
// category precedence and then line number.
func Compare(oldText, newText string, ignoreWhitespace bool) []model.DiffRecord {
	oldLines := lines.Split(oldText)
	newLines := lines.Split(newText)

	key := func(line string) string {
		if ignoreWhitespace {
			return strings.Join(strings.Fields(line), " ")
		}
		return line
	}
	oldKeys := make([]string, len(oldLines))
	for i, line := range oldLines {
		oldKeys[i] = key(line)
	}
	newKeys := make([]string, len(newLines))
	for i, line := range newLines {
		newKeys[i] = key(line)
	}

	result := make([]model.DiffRecord, 0, max(len(oldLines), len(newLines)))
	oldMatched := make([]bool, len(oldLines))
	newMatched := make([]bool, len(newLines))

	// same content, same position
	for i := range min(len(oldLines), len(newLines)) {
		if oldKeys[i] == newKeys[i] {
			result = append(result, model.DiffRecord{Text: oldLines[i], DiffType: model.DiffUnchanged, LineNumber: i + 1})
			oldMatched[i] = true
			newMatched[i] = true
		}
	}

	// same content, different position: n-th leftover old occurrence pairs with n-th leftover new one
	oldPositions := positions(oldKeys, oldMatched)
	newPositions := positions(newKeys, newMatched)
	for k, oldPos := range oldPositions {
		newPos, ok := newPositions[k]
		if !ok {
			continue
		}
		for i := range min(len(oldPos), len(newPos)) {
			result = append(result, model.DiffRecord{Text: newLines[newPos[i]], DiffType: model.DiffMoved, LineNumber: newPos[i] + 1})
			oldMatched[oldPos[i]] = true
			newMatched[newPos[i]] = true
		}
	}

	for i, matched := range oldMatched {
		if !matched {
			result = append(result, model.DiffRecord{Text: oldLines[i], DiffType: model.DiffRemoved, LineNumber: i + 1})
		}
	}
	for i, matched := range newMatched {
		if !matched {
			result = append(result, model.DiffRecord{Text: newLines[i], DiffType: model.DiffAdded, LineNumber: i + 1})
		}
	}

	slices.SortFunc(result, func(a, b model.DiffRecord) int {
		if c := a.DiffType.Precedence() - b.DiffType.Precedence(); c != 0 {
			return c
		}
		return a.LineNumber - b.LineNumber
	})

	return result
}

// positions groups the indexes of not yet matched lines by key, in ascending order
func positions(keys []string, matched []bool) map[string][]int {
	result := make(map[string][]int)
	for i, k := range keys {
		if !matched[i] {
			result[k] = append(result[k], i)
		}
	}
	return result
}

// Marshal serializes records to the JSON array hosts consume; no records gives "[]"
func Marshal(records []model.DiffRecord) (string, error) {
	if records == nil {
		records = []model.DiffRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
