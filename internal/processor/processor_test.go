package processor_test

import (
	"context"
	"strings"
	"testing"

	"github.com/UnendingLoop/TextSplitter/internal/apperr"
	"github.com/UnendingLoop/TextSplitter/internal/lines"
	"github.com/UnendingLoop/TextSplitter/internal/matcher"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/UnendingLoop/TextSplitter/internal/processor"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSampler struct{}

func (staticSampler) RSS() (uint64, error) { return 4096, nil }

func newProcessor() *processor.Processor {
	return processor.New(matcher.DefaultOptions, metrics.NewRecorder(staticSampler{}), zap.NewNop())
}

func TestSplitColumns(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		delimiter string
		trimParts bool
		useRegex  bool
		want      []string
	}{
		{
			name:      "Positive - two by two",
			text:      "a,b\nc,d",
			delimiter: ",",
			want:      []string{"a\nc", "b\nd"},
		},
		{
			name:      "Positive - short row is padded",
			text:      "a,b,c\nd",
			delimiter: ",",
			want:      []string{"a\nd", "b\n", "c\n"},
		},
		{
			name:      "Positive - late column is back-filled",
			text:      "a\nb,c",
			delimiter: ",",
			want:      []string{"a\nb", "\nc"},
		},
		{
			name:      "Positive - trim parts",
			text:      " a , b \n c,d",
			delimiter: ",",
			trimParts: true,
			want:      []string{"a\nc", "b\nd"},
		},
		{
			name:      "Positive - regexp delimiter",
			text:      "x ; y;z",
			delimiter: `\s*;\s*`,
			useRegex:  true,
			want:      []string{"x", "y", "z"},
		},
		{
			name:      "Positive - delimiter is literal when regexp is off",
			text:      "a.b|c",
			delimiter: ".",
			want:      []string{"a", "b|c"},
		},
		{
			name:      "Positive - empty delimiter keeps the line whole",
			text:      "a,b\nc",
			delimiter: "",
			want:      []string{"a,b\nc"},
		},
		{
			name:      "Positive - CRLF input",
			text:      "a;b\r\nc;d\r\n",
			delimiter: ";",
			want:      []string{"a\nc", "b\nd"},
		},
		{
			name:      "Positive - empty input",
			text:      "",
			delimiter: ",",
			want:      []string{},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			env, err := newProcessor().SplitColumns(tt.text, tt.delimiter, tt.trimParts, tt.useRegex)

			require.NoError(t, err)
			require.Equal(t, tt.want, env.Result)
			require.Zero(t, env.RemovedCount)
		})
	}
}

func TestSplitColumnsAlignment(t *testing.T) {
	text := "1,2,3\n4\n\n5,6\n7,8,9,10"

	env, err := newProcessor().SplitColumns(text, ",", false, false)
	require.NoError(t, err)
	require.Len(t, env.Result, 4)

	for i, col := range env.Result {
		require.Equal(t, lines.Count(text), strings.Count(col, "\n")+1, "column %d", i)
	}
}

func TestSplitColumnsInvalidPattern(t *testing.T) {
	env, err := newProcessor().SplitColumns("a(b", "(", false, true)

	require.Error(t, err)
	require.Nil(t, env)
	require.Equal(t, "InvalidPattern", apperr.Kind(err))
}

func TestConnect(t *testing.T) {
	cases := []struct {
		name         string
		text1, text2 string
		sep          string
		want         string
	}{
		{name: "Positive - right text longer", text1: "x\ny", text2: "1\n2\n3", sep: "-", want: "x-1\ny-2\n-3"},
		{name: "Positive - left text longer", text1: "a\nb", text2: "1", sep: ": ", want: "a: 1\nb: "},
		{name: "Positive - empty separator", text1: "a", text2: "b", sep: "", want: "ab"},
		{name: "Positive - both empty", text1: "", text2: "", sep: "-", want: ""},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, newProcessor().Connect(tt.text1, tt.text2, tt.sep))
		})
	}
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name          string
		text          string
		pattern       string
		mode          model.FilterMode
		caseSensitive bool
		splitMatches  bool
		want          string
		wantKind      string
	}{
		{
			name:          "Positive - extract word",
			text:          "cat dog",
			pattern:       `d\w+`,
			mode:          model.FilterExtract,
			caseSensitive: true,
			want:          "dog",
		},
		{
			name:          "Positive - remove matches",
			text:          "cat dog",
			pattern:       `\s*dog`,
			mode:          model.FilterRemove,
			caseSensitive: true,
			want:          "cat",
		},
		{
			name:          "Positive - blank and emptied lines dropped",
			text:          "a1\n\n   \nbc\nb2",
			pattern:       `\d`,
			mode:          model.FilterExtract,
			caseSensitive: true,
			want:          "1\n2",
		},
		{
			name:    "Positive - case-insensitive matches concatenated",
			text:    "Cat and cAT",
			pattern: "cat",
			mode:    model.FilterExtract,
			want:    "CatcAT",
		},
		{
			name:         "Positive - case-insensitive matches one per line",
			text:         "Cat and cAT",
			pattern:      "cat",
			mode:         model.FilterExtract,
			splitMatches: true,
			want:         "Cat\ncAT",
		},
		{
			name:          "Positive - line fully removed disappears",
			text:          "123\nabc",
			pattern:       `\d+`,
			mode:          model.FilterRemove,
			caseSensitive: true,
			want:          "abc",
		},
		{
			name:          "Positive - lookahead",
			text:          "price100 cost200",
			pattern:       `[a-z]+(?=200)`,
			mode:          model.FilterExtract,
			caseSensitive: true,
			want:          "cost",
		},
		{
			name:     "Negative - broken regexp",
			text:     "abc",
			pattern:  "[a",
			mode:     model.FilterExtract,
			wantKind: "InvalidPattern",
		},
		{
			name:     "Negative - unknown mode",
			text:     "abc",
			pattern:  "a",
			mode:     model.FilterMode("keep"),
			wantKind: "InvalidOption",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			env, err := newProcessor().Filter(tt.text, tt.pattern, tt.mode, tt.caseSensitive, tt.splitMatches)

			if tt.wantKind != "" {
				require.Error(t, err)
				require.Nil(t, env)
				require.Equal(t, tt.wantKind, apperr.Kind(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, env.Result)
			require.Zero(t, env.RemovedCount)
		})
	}
}

func TestRemoveLines(t *testing.T) {
	cases := []struct {
		name          string
		text          string
		pattern       string
		mode          model.RemoveMode
		caseSensitive bool
		useRegex      bool
		trimParts     bool
		want          string
		wantRemoved   int
		wantKind      string
		blankTail     bool
	}{
		{
			name:          "Positive - duplicates",
			text:          "a\na\nb",
			mode:          model.RemoveDuplicates,
			caseSensitive: true,
			want:          "a\nb",
			wantRemoved:   1,
		},
		{
			name:        "Positive - duplicates ignoring case keeps first spelling",
			text:        "Apple\napple\nAPPLE\nb",
			mode:        model.RemoveDuplicates,
			want:        "Apple\nb",
			wantRemoved: 2,
		},
		{
			name:          "Positive - duplicates with trimming",
			text:          "  a\na  \nb",
			mode:          model.RemoveDuplicates,
			caseSensitive: true,
			trimParts:     true,
			want:          "a\nb",
			wantRemoved:   1,
		},
		{
			name:          "Positive - duplicates ignore a broken pattern",
			text:          "x\nx",
			pattern:       "[",
			mode:          model.RemoveDuplicates,
			caseSensitive: true,
			useRegex:      true,
			want:          "x",
			wantRemoved:   1,
		},
		{
			name:          "Positive - containing literal",
			text:          "apple\nbanana\napricot",
			pattern:       "ap",
			mode:          model.RemoveContaining,
			caseSensitive: true,
			want:          "apple\napricot",
			wantRemoved:   1,
		},
		{
			name:          "Positive - not containing literal",
			text:          "apple\nbanana\napricot",
			pattern:       "ap",
			mode:          model.RemoveNotContaining,
			caseSensitive: true,
			want:          "banana",
			wantRemoved:   2,
		},
		{
			name:        "Positive - containing literal ignoring case",
			text:        "Apple\nbanana",
			pattern:     "APP",
			mode:        model.RemoveContaining,
			want:        "Apple",
			wantRemoved: 1,
		},
		{
			name:          "Positive - containing regexp",
			text:          "b1\na2\nb3",
			pattern:       `^b\d$`,
			mode:          model.RemoveContaining,
			caseSensitive: true,
			useRegex:      true,
			want:          "b1\nb3",
			wantRemoved:   1,
		},
		{
			name:          "Positive - regexp metacharacters are literal without regexp",
			text:          "a.c\nabc",
			pattern:       "a.c",
			mode:          model.RemoveContaining,
			caseSensitive: true,
			want:          "a.c",
			wantRemoved:   1,
		},
		{
			name:          "Positive - not containing regexp",
			text:          "b1\na2\nb3",
			pattern:       `^b\d$`,
			mode:          model.RemoveNotContaining,
			caseSensitive: true,
			useRegex:      true,
			want:          "a2",
			wantRemoved:   2,
		},
		{
			name:          "Positive - kept trailing empty line vanishes from the joined text",
			text:          "a\n\n",
			mode:          model.RemoveDuplicates,
			caseSensitive: true,
			want:          "a\n",
			wantRemoved:   0,
			blankTail:     true,
		},
		{
			name:          "Positive - empty input",
			text:          "",
			mode:          model.RemoveDuplicates,
			caseSensitive: true,
			want:          "",
			wantRemoved:   0,
		},
		{
			name:     "Negative - broken regexp fails before processing",
			text:     "a\nb",
			pattern:  "(",
			mode:     model.RemoveContaining,
			useRegex: true,
			wantKind: "InvalidPattern",
		},
		{
			name:     "Negative - unknown mode",
			text:     "a",
			mode:     model.RemoveMode("everything"),
			wantKind: "InvalidOption",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			env, err := newProcessor().RemoveLines(tt.text, tt.pattern, tt.mode, tt.caseSensitive, tt.useRegex, tt.trimParts)

			if tt.wantKind != "" {
				require.Error(t, err)
				require.Nil(t, env)
				require.Equal(t, tt.wantKind, apperr.Kind(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, env.Result)
			require.Equal(t, tt.wantRemoved, env.RemovedCount)
			recounted := lines.Count(tt.text) - lines.Count(env.Result)
			if tt.blankTail {
				// the kept "" is the last line, and Join leaves it as a final newline
				recounted--
			}
			require.Equal(t, recounted, env.RemovedCount)
		})
	}
}

func TestRemoveDuplicatesIdempotent(t *testing.T) {
	p := newProcessor()
	text := "b\na\nB\nb\nc\na"

	first, err := p.RemoveLines(text, "", model.RemoveDuplicates, false, false, false)
	require.NoError(t, err)
	require.Equal(t, "b\na\nc", first.Result)
	require.Equal(t, 3, first.RemovedCount)

	second, err := p.RemoveLines(first.Result, "", model.RemoveDuplicates, false, false, false)
	require.NoError(t, err)
	require.Equal(t, first.Result, second.Result)
	require.Zero(t, second.RemovedCount)
}

func TestSortLines(t *testing.T) {
	cases := []struct {
		name          string
		text          string
		mode          model.SortMode
		caseSensitive bool
		want          string
		wantRemoved   int
	}{
		{name: "Positive - alphabetical", text: "banana\nApple\ncherry", mode: model.SortAlphabetical, want: "Apple\nbanana\ncherry"},
		{name: "Positive - alphabetical reverse", text: "banana\nApple\ncherry", mode: model.SortAlphabeticalReverse, want: "cherry\nbanana\nApple"},
		{name: "Positive - natural", text: "file10\nfile2\nfile1", mode: model.SortNatural, want: "file1\nfile2\nfile10"},
		{name: "Positive - natural reverse", text: "file10\nfile2\nfile1", mode: model.SortNaturalReverse, want: "file10\nfile2\nfile1"},
		{name: "Positive - natural leading zeros", text: "v010\nv9\nv10", mode: model.SortNatural, want: "v9\nv10\nv010"},
		{name: "Positive - length ascending", text: "ccc\na\nbb", mode: model.SortLengthAsc, want: "a\nbb\nccc"},
		{name: "Positive - length is stable", text: "bb\naa\nc", mode: model.SortLengthAsc, want: "c\nbb\naa"},
		{name: "Positive - length counts runes", text: "ab\nжжж\nя", mode: model.SortLengthDesc, want: "жжж\nab\nя"},
		{name: "Positive - blank lines dropped", text: "b\n\na\n  ", mode: model.SortAlphabetical, want: "a\nb", wantRemoved: 2},
		{name: "Positive - empty input", text: "", mode: model.SortNatural, want: ""},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			env, err := newProcessor().SortLines(tt.text, tt.mode, tt.caseSensitive, 0)

			require.NoError(t, err)
			require.Equal(t, tt.want, env.Result)
			require.Equal(t, tt.wantRemoved, env.RemovedCount)
		})
	}
}

func TestSortLinesRandom(t *testing.T) {
	p := newProcessor()
	text := "1\n2\n3\n4\n5\n6\n7\n8"

	first, err := p.SortLines(text, model.SortRandom, true, 42)
	require.NoError(t, err)
	second, err := p.SortLines(text, model.SortRandom, true, 42)
	require.NoError(t, err)

	require.Equal(t, first.Result, second.Result)
	require.ElementsMatch(t, lines.Split(text), lines.Split(first.Result))
}

func TestSortLinesUnknownMode(t *testing.T) {
	env, err := newProcessor().SortLines("a", model.SortMode("sideways"), true, 0)

	require.Error(t, err)
	require.Nil(t, env)
	require.Equal(t, "InvalidOption", apperr.Kind(err))
}

func TestConvertCase(t *testing.T) {
	const sample = "exampleText_for-conversion"
	cases := []struct {
		style model.CaseStyle
		text  string
		want  string
	}{
		{style: model.CasePascal, text: sample, want: "ExampleTextForConversion"},
		{style: model.CaseCamel, text: sample, want: "exampleTextForConversion"},
		{style: model.CaseFlat, text: sample, want: "exampletextforconversion"},
		{style: model.CaseSnake, text: sample, want: "example_text_for_conversion"},
		{style: model.CaseKebab, text: sample, want: "example-text-for-conversion"},
		{style: model.CaseTitle, text: sample, want: "Example Text For Conversion"},
		{style: model.CaseTitlePlus, text: sample, want: "Example Text for conversion"},
		{style: model.CaseSnake, text: "fooBar\nBaz Qux\n", want: "foo_bar\nbaz_qux"},
		{style: model.CaseCamel, text: "\n  \n", want: "\n"},
	}

	for _, tt := range cases {
		t.Run(string(tt.style), func(t *testing.T) {
			env, err := newProcessor().ConvertCase(tt.text, tt.style)

			require.NoError(t, err)
			require.Equal(t, tt.want, env.Result)
		})
	}

	_, err := newProcessor().ConvertCase(sample, model.CaseStyle("shouting"))
	require.Equal(t, "InvalidOption", apperr.Kind(err))
}

func TestDiff(t *testing.T) {
	env, err := newProcessor().Diff("a\nb\nc", "a\nc\nb", false)

	require.NoError(t, err)
	require.JSONEq(t, `[
		{"text":"a","diffType":"Unchanged","lineNumber":1},
		{"text":"c","diffType":"Moved","lineNumber":2},
		{"text":"b","diffType":"Moved","lineNumber":3}
	]`, env.Result)
	require.Zero(t, env.RemovedCount)
}

func TestProcessInput(t *testing.T) {
	cases := []struct {
		name        string
		task        *model.TaskDTO
		wantOutput  []string
		wantRemoved int
		wantMetrics bool
		wantKind    string
	}{
		{
			name:        "Positive - split",
			task:        &model.TaskDTO{TaskID: "t1", Op: model.OpSplit, Text: "a,b\nc,d", Param: model.OpParam{Delimiter: ","}},
			wantOutput:  []string{"a\nc", "b\nd"},
			wantMetrics: true,
		},
		{
			name:       "Positive - connect has no metrics",
			task:       &model.TaskDTO{TaskID: "t2", Op: model.OpConnect, Text: "x\ny", Text2: "1\n2\n3", Param: model.OpParam{Separator: "-"}},
			wantOutput: []string{"x-1\ny-2\n-3"},
		},
		{
			name: "Positive - remove duplicates",
			task: &model.TaskDTO{TaskID: "t3", Op: model.OpRemove, Text: "a\na\nb", Param: model.OpParam{
				RemoveMode:    model.RemoveDuplicates,
				CaseSensitive: true,
			}},
			wantOutput:  []string{"a\nb"},
			wantRemoved: 1,
			wantMetrics: true,
		},
		{
			name: "Positive - filter",
			task: &model.TaskDTO{TaskID: "t4", Op: model.OpFilter, Text: "cat dog", Param: model.OpParam{
				Pattern:       `d\w+`,
				FilterMode:    model.FilterExtract,
				CaseSensitive: true,
			}},
			wantOutput:  []string{"dog"},
			wantMetrics: true,
		},
		{
			name:        "Positive - case",
			task:        &model.TaskDTO{TaskID: "t5", Op: model.OpCase, Text: "hello world", Param: model.OpParam{CaseStyle: model.CaseKebab}},
			wantOutput:  []string{"hello-world"},
			wantMetrics: true,
		},
		{
			name: "Negative - broken regexp",
			task: &model.TaskDTO{TaskID: "t6", Op: model.OpFilter, Text: "abc", Param: model.OpParam{
				Pattern:    "?abc",
				FilterMode: model.FilterRemove,
			}},
			wantKind: "InvalidPattern",
		},
		{
			name:     "Negative - unknown operation",
			task:     &model.TaskDTO{TaskID: "t7", Op: model.Operation("grep"), Text: "abc"},
			wantKind: "InvalidOption",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newProcessor().ProcessInput(context.Background(), tt.task)

			if tt.wantKind != "" {
				require.Error(t, err)
				require.Nil(t, res)
				require.Equal(t, tt.wantKind, apperr.Kind(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.task.TaskID, res.TaskID)
			require.Equal(t, tt.task.Op, res.Op)
			require.Equal(t, tt.wantOutput, res.Output)
			require.Equal(t, tt.wantRemoved, res.RemovedCount)
			require.Equal(t, processor.Checksum(tt.wantOutput), res.HashSumm)
			if tt.wantMetrics {
				require.NotNil(t, res.Metrics)
				require.Equal(t, uint64(4), res.Metrics.MemoryUsageKB)
			} else {
				require.Nil(t, res.Metrics)
			}
		})
	}
}

func TestProcessInputCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newProcessor().ProcessInput(ctx, &model.TaskDTO{TaskID: "t", Op: model.OpSplit, Text: "a"})

	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, res)
}

func TestChecksum(t *testing.T) {
	require.Equal(t, processor.Checksum([]string{"a", "b"}), processor.Checksum([]string{"a", "b"}))
	require.NotEqual(t, processor.Checksum([]string{"ab"}), processor.Checksum([]string{"a", "b"}))
	require.NotEqual(t, processor.Checksum([]string{"a"}), processor.Checksum([]string{"b"}))
}
