package processor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/lines"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConvertCase rewrites every line in the requested style. Words are delimited by whitespace,
// '-', '_' and lower-to-upper transitions.
func (p *Processor) ConvertCase(text string, style model.CaseStyle) (*model.Envelope[string], error) {
	switch style {
	case model.CasePascal, model.CaseCamel, model.CaseFlat, model.CaseSnake,
		model.CaseKebab, model.CaseTitle, model.CaseTitlePlus:
	default:
		return nil, apperr.InvalidOption("case style", string(style))
	}

	return metrics.Track(p.rec, func() (string, int, error) {
		// a Caser is stateful, one per call
		title := cases.Title(language.Und, cases.NoLower)

		src := lines.Split(text)
		out := make([]string, len(src))
		for i, line := range src {
			out[i] = convertLine(line, style, title)
		}
		return lines.Join(out), 0, nil
	})
}

func convertLine(line string, style model.CaseStyle, title cases.Caser) string {
	if style == model.CaseTitlePlus {
		return upperFirst(strings.Join(words(line, false), " "))
	}

	ws := words(line, true)
	switch style {
	case model.CasePascal:
		return capitalizeAll(ws, title, "")
	case model.CaseCamel:
		if len(ws) == 0 {
			return ""
		}
		return ws[0] + capitalizeAll(ws[1:], title, "")
	case model.CaseFlat:
		return strings.Join(ws, "")
	case model.CaseSnake:
		return strings.Join(ws, "_")
	case model.CaseKebab:
		return strings.Join(ws, "-")
	default:
		return capitalizeAll(ws, title, " ")
	}
}

// words breaks a line into words; title-plus asks for them with the original case kept
func words(line string, lower bool) []string {
	var b strings.Builder
	b.Grow(len(line) + 4)

	var prev rune
	for _, r := range line {
		switch {
		case r == '-' || r == '_':
			b.WriteByte(' ')
		case unicode.IsLower(prev) && unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}

	s := b.String()
	if lower {
		s = strings.ToLower(s)
	}
	return strings.Fields(s)
}

func capitalizeAll(ws []string, title cases.Caser, sep string) string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = title.String(w)
	}
	return strings.Join(out, sep)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
