package processor

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/lines"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortLines orders the non-blank lines of text. Blank lines are dropped and counted as removed.
// The random mode is a seeded shuffle, so the same seed always yields the same order.
func (p *Processor) SortLines(text string, mode model.SortMode, caseSensitive bool, seed uint64) (*model.Envelope[string], error) {
	cmpFn, err := lineOrder(mode, caseSensitive)
	if err != nil {
		return nil, err
	}

	return metrics.Track(p.rec, func() (string, int, error) {
		src := lines.Split(text)
		kept := slices.DeleteFunc(slices.Clone(src), lines.IsBlank)

		if mode == model.SortRandom {
			rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			rnd.Shuffle(len(kept), func(i, j int) {
				kept[i], kept[j] = kept[j], kept[i]
			})
		} else {
			slices.SortStableFunc(kept, cmpFn)
		}

		return lines.Join(kept), len(src) - len(kept), nil
	})
}

func lineOrder(mode model.SortMode, caseSensitive bool) (func(a, b string) int, error) {
	switch mode {
	case model.SortAlphabetical, model.SortAlphabeticalReverse:
		var opts []collate.Option
		if !caseSensitive {
			opts = append(opts, collate.IgnoreCase)
		}
		// Collator keeps scratch buffers, one per call
		c := collate.New(language.English, opts...)
		if mode == model.SortAlphabeticalReverse {
			return func(a, b string) int { return c.CompareString(b, a) }, nil
		}
		return c.CompareString, nil

	case model.SortNatural:
		return func(a, b string) int { return naturalCompare(a, b, !caseSensitive) }, nil
	case model.SortNaturalReverse:
		return func(a, b string) int { return naturalCompare(b, a, !caseSensitive) }, nil

	case model.SortLengthAsc:
		return byLength, nil
	case model.SortLengthDesc:
		return func(a, b string) int { return byLength(b, a) }, nil

	case model.SortRandom:
		return nil, nil
	default:
		return nil, apperr.InvalidOption("sort mode", string(mode))
	}
}

func byLength(a, b string) int {
	return cmp.Compare(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
}

// naturalCompare orders digit runs by numeric value, so "file2" sorts before "file10"
func naturalCompare(a, b string, fold bool) int {
	if fold {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}

	for a != "" && b != "" {
		ca, restA := chunk(a)
		cb, restB := chunk(b)

		var c int
		if isDigit(ca[0]) && isDigit(cb[0]) {
			na, nb := strings.TrimLeft(ca, "0"), strings.TrimLeft(cb, "0")
			c = cmp.Compare(len(na), len(nb))
			if c == 0 {
				c = strings.Compare(na, nb)
			}
			if c == 0 {
				// equal values: fewer leading zeros first
				c = cmp.Compare(len(ca), len(cb))
			}
		} else {
			c = strings.Compare(ca, cb)
		}
		if c != 0 {
			return c
		}

		a, b = restA, restB
	}

	return cmp.Compare(len(a), len(b))
}

// chunk cuts the leading run of ASCII digits or non-digits. Digits are single bytes, so
// cutting on them never splits a UTF-8 sequence.
func chunk(s string) (string, string) {
	digits := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
