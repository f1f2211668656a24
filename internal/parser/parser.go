// Package parser turns command-line arguments into a run mode with its task and the app config
package parser

import (
	"io"
	"time"

	"github.com/UnendingLoop/TextSplitter/internal/config"
	"github.com/UnendingLoop/TextSplitter/internal/model"
	"github.com/UnendingLoop/TextSplitter/internal/reader"
	"github.com/cockroachdb/errors"
	"github.com/docker/distribution/uuid"
	"github.com/spf13/cobra"
)

// ErrNothingToRun - help or version was printed instead of selecting a command
var ErrNothingToRun = errors.New("nothing to run")

type parsed struct {
	app *model.AppInit
	cfg *config.Config
}

// InitAppMode parses args (without the program name). Texts are read from the named files,
// stdin standing in for a missing or "-" name.
func InitAppMode(args []string, stdin io.Reader, stdout, stderr io.Writer) (*model.AppInit, *config.Config, error) {
	var res parsed
	root := newRootCmd(&res)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		return nil, nil, err
	}
	if res.app == nil {
		return nil, nil, ErrNothingToRun
	}
	return res.app, res.cfg, nil
}

func newRootCmd(res *parsed) *cobra.Command {
	root := &cobra.Command{
		Use:   "textsplitter",
		Short: "Split, join, filter, deduplicate, sort and diff text line by line",
		Long: `textsplitter applies line-oriented text operations locally, on a set of
serving nodes (--node, results accepted once --quorum nodes agree), or serves
them over HTTP (textsplitter serve).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		serveCmd(res),
		splitCmd(res),
		connectCmd(res),
		filterCmd(res),
		removeCmd(res),
		diffCmd(res),
		sortCmd(res),
		caseCmd(res),
	)
	return root
}

// finish loads the config and records the task; --node switches to remote mode
func finish(cmd *cobra.Command, res *parsed, task model.TaskDTO) error {
	v, err := config.NewViper(cmd.InheritedFlags())
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	mode := model.ModeLocal
	if len(cfg.Nodes) > 0 {
		mode = model.ModeRemote
	}

	task.TaskID = uuid.Generate().String()
	res.app = &model.AppInit{Mode: mode, Task: task}
	res.cfg = cfg
	return nil
}

// readTexts reads every named input; at most one of them may come from stdin
func readTexts(cmd *cobra.Command, names ...string) ([]string, error) {
	texts := make([]string, 0, len(names))
	fromStdin := 0
	for _, name := range names {
		if name == "" || name == "-" {
			fromStdin++
			if fromStdin > 1 {
				return nil, errors.New("stdin can feed only one of the inputs")
			}
		}
		text, err := reader.ReadInput(cmd.InOrStdin(), name)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func argOrStdin(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func serveCmd(res *parsed) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve every operation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(cmd.InheritedFlags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			res.app = &model.AppInit{Mode: model.ModeServe}
			res.cfg = cfg
			return nil
		},
	}
}

func splitCmd(res *parsed) *cobra.Command {
	var prm model.OpParam
	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Split every line at a delimiter and print the columns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readTexts(cmd, argOrStdin(args, 0))
			if err != nil {
				return err
			}
			return finish(cmd, res, model.TaskDTO{Op: model.OpSplit, Text: texts[0], Param: prm})
		},
	}
	cmd.Flags().StringVarP(&prm.Delimiter, "delimiter", "d", ",", "column delimiter")
	cmd.Flags().BoolVarP(&prm.UseRegex, "regex", "r", false, "treat the delimiter as a regular expression")
	cmd.Flags().BoolVarP(&prm.TrimParts, "trim", "t", false, "trim whitespace around every part")
	return cmd
}

func connectCmd(res *parsed) *cobra.Command {
	var prm model.OpParam
	cmd := &cobra.Command{
		Use:   "connect <file1> [file2]",
		Short: "Join the lines of two texts pairwise",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readTexts(cmd, args[0], argOrStdin(args, 1))
			if err != nil {
				return err
			}
			return finish(cmd, res, model.TaskDTO{Op: model.OpConnect, Text: texts[0], Text2: texts[1], Param: prm})
		},
	}
	cmd.Flags().StringVarP(&prm.Separator, "separator", "s", "", "glue placed between paired lines")
	return cmd
}

func filterCmd(res *parsed) *cobra.Command {
	var prm model.OpParam
	var mode string
	cmd := &cobra.Command{
		Use:   "filter [file]",
		Short: "Remove or extract the regular expression matches of every line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readTexts(cmd, argOrStdin(args, 0))
			if err != nil {
				return err
			}
			prm.FilterMode = model.FilterMode(mode)
			return finish(cmd, res, model.TaskDTO{Op: model.OpFilter, Text: texts[0], Param: prm})
		},
	}
	cmd.Flags().StringVarP(&prm.Pattern, "pattern", "p", "", "regular expression")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(model.FilterExtract), "extract or remove")
	cmd.Flags().BoolVarP(&prm.CaseSensitive, "case-sensitive", "c", false, "match case exactly")
	cmd.Flags().BoolVar(&prm.SplitMatches, "split-matches", false, "print every extracted match on its own line")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func removeCmd(res *parsed) *cobra.Command {
	var prm model.OpParam
	var mode string
	cmd := &cobra.Command{
		Use:   "remove [file]",
		Short: "Remove duplicate lines, or keep only lines (not) containing a pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readTexts(cmd, argOrStdin(args, 0))
			if err != nil {
				return err
			}
			prm.RemoveMode = model.RemoveMode(mode)
			return finish(cmd, res, model.TaskDTO{Op: model.OpRemove, Text: texts[0], Param: prm})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(model.RemoveDuplicates), "duplicates, containing or not-containing")
	cmd.Flags().StringVarP(&prm.Pattern, "pattern", "p", "", "pattern for the containing modes")
	cmd.Flags().BoolVarP(&prm.CaseSensitive, "case-sensitive", "c", false, "compare case exactly")
	cmd.Flags().BoolVarP(&prm.UseRegex, "regex", "r", false, "treat the pattern as a regular expression")
	cmd.Flags().BoolVarP(&prm.TrimParts, "trim", "t", false, "trim lines before looking for duplicates")
	return cmd
}

func diffCmd(res *parsed) *cobra.Command {
	var prm model.OpParam
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Classify lines as unchanged, moved, removed or added",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readTexts(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			return finish(cmd, res, model.TaskDTO{Op: model.OpDiff, Text: texts[0], Text2: texts[1], Param: prm})
		},
	}
	cmd.Flags().BoolVarP(&prm.IgnoreWhitespace, "ignore-whitespace", "w", false, "compare lines with whitespace runs collapsed")
	return cmd
}

func sortCmd(res *parsed) *cobra.Command {
	var prm model.OpParam
	var mode string
	cmd := &cobra.Command{
		Use:   "sort [file]",
		Short: "Sort lines, dropping blank ones",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readTexts(cmd, argOrStdin(args, 0))
			if err != nil {
				return err
			}
			prm.SortMode = model.SortMode(mode)
			if !cmd.Flags().Changed("seed") {
				prm.Seed = uint64(time.Now().UnixNano())
			}
			return finish(cmd, res, model.TaskDTO{Op: model.OpSort, Text: texts[0], Param: prm})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(model.SortAlphabetical),
		"alphabetical, alphabetical-reverse, natural, natural-reverse, length-asc, length-desc or random")
	cmd.Flags().BoolVarP(&prm.CaseSensitive, "case-sensitive", "c", false, "compare case exactly")
	cmd.Flags().Uint64Var(&prm.Seed, "seed", 0, "shuffle seed for the random mode")
	return cmd
}

func caseCmd(res *parsed) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "case [file]",
		Short: "Convert every line to a naming style",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readTexts(cmd, argOrStdin(args, 0))
			if err != nil {
				return err
			}
			return finish(cmd, res, model.TaskDTO{Op: model.OpCase, Text: texts[0], Param: model.OpParam{CaseStyle: model.CaseStyle(style)}})
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", "", "pascal, camel, flat, snake, kebab, title or title-plus")
	_ = cmd.MarkFlagRequired("style")
	return cmd
}
