// Package model contains data structures shared by the engine, the transport layer and the CLI
package model

import (
	"fmt"
	"slices"
	"strings"
)

type AppMode string

const (
	ModeServe  = AppMode("serve")
	ModeLocal  = AppMode("local")
	ModeRemote = AppMode("remote")
)

// AppInit - what the command line asked for: run mode plus the task to execute
type AppInit struct {
	Mode AppMode
	Task TaskDTO
}

// NodesList - collects repeated --node flags, skipping empty and duplicate addresses
type NodesList []string

func (n *NodesList) String() string {
	return strings.Join(*n, ",")
}

func (n *NodesList) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty node address")
	}
	if !slices.Contains(*n, value) {
		*n = append(*n, value)
	}
	return nil
}

func (n *NodesList) Type() string {
	return "node"
}

type Operation string

const (
	OpSplit   = Operation("split")
	OpConnect = Operation("connect")
	OpFilter  = Operation("filter")
	OpRemove  = Operation("remove")
	OpDiff    = Operation("diff")
	OpSort    = Operation("sort")
	OpCase    = Operation("case")
)

type FilterMode string

const (
	FilterRemove  = FilterMode("remove")
	FilterExtract = FilterMode("extract")
)

type RemoveMode string

const (
	RemoveDuplicates    = RemoveMode("duplicates")
	RemoveContaining    = RemoveMode("containing")
	RemoveNotContaining = RemoveMode("not-containing")
)

type SortMode string

const (
	SortAlphabetical        = SortMode("alphabetical")
	SortAlphabeticalReverse = SortMode("alphabetical-reverse")
	SortNatural             = SortMode("natural")
	SortNaturalReverse      = SortMode("natural-reverse")
	SortLengthAsc           = SortMode("length-asc")
	SortLengthDesc          = SortMode("length-desc")
	SortRandom              = SortMode("random")
)

type CaseStyle string

const (
	CasePascal    = CaseStyle("pascal")
	CaseCamel     = CaseStyle("camel")
	CaseFlat      = CaseStyle("flat")
	CaseSnake     = CaseStyle("snake")
	CaseKebab     = CaseStyle("kebab")
	CaseTitle     = CaseStyle("title")
	CaseTitlePlus = CaseStyle("title-plus")
)

// OpParam - every option any operation may read; each operation uses only its own subset
type OpParam struct {
	Delimiter        string     `json:"delimiter,omitempty"`   // split: column delimiter
	Separator        string     `json:"separator,omitempty"`   // connect: glue between line pairs
	Pattern          string     `json:"pattern,omitempty"`     // filter/remove: literal or regexp
	FilterMode       FilterMode `json:"filter_mode,omitempty"` // filter: remove | extract
	RemoveMode       RemoveMode `json:"remove_mode,omitempty"` // remove: duplicates | containing | not-containing
	SortMode         SortMode   `json:"sort_mode,omitempty"`   // sort
	CaseStyle        CaseStyle  `json:"case_style,omitempty"`  // case
	CaseSensitive    bool       `json:"case_sensitive"`        // filter/remove/sort
	UseRegex         bool       `json:"use_regex"`             // split/remove
	TrimParts        bool       `json:"trim_parts"`            // split/remove
	SplitMatches     bool       `json:"split_matches"`         // filter: extract matches one per line
	IgnoreWhitespace bool       `json:"ignore_whitespace"`     // diff
	Seed             uint64     `json:"seed,omitempty"`        // sort: random shuffle seed
}

// TaskDTO - one engine invocation as it travels between CLI, remote nodes and the processor
type TaskDTO struct {
	TaskID string    `json:"tid" binding:"required"`
	Op     Operation `json:"op" binding:"required,oneof=split connect filter remove diff sort case"`
	Text   string    `json:"text"`
	Text2  string    `json:"text2,omitempty"` // connect: right-hand text, diff: new text
	Param  OpParam   `json:"param"`
}

// OpRequest - body of the per-operation endpoint; the operation itself comes from the URL
type OpRequest struct {
	Text  string  `json:"text"`
	Text2 string  `json:"text2,omitempty"`
	Param OpParam `json:"param"`
}

// TaskResult - processed task with the checksum nodes vote on
type TaskResult struct {
	TaskID       string    `json:"tid"`
	Op           Operation `json:"op"`
	HashSumm     uint64    `json:"hash"`
	Output       []string  `json:"output"`
	RemovedCount int       `json:"removed_count"`
	Metrics      *Metrics  `json:"metrics,omitempty"`
}

// Metrics - informational numbers sampled around an operation
type Metrics struct {
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	MemoryUsageKB   uint64  `json:"memory_usage_kb"`
	MemoryDeltaStr  string  `json:"memory_delta_str"`
}

// Envelope - uniform wrapper around an operation's output
type Envelope[T any] struct {
	Result       T       `json:"result"`
	RemovedCount int     `json:"removed_count"`
	Metrics      Metrics `json:"metrics"`
}

type DiffType string

const (
	DiffUnchanged = DiffType("Unchanged")
	DiffMoved     = DiffType("Moved")
	DiffRemoved   = DiffType("Removed")
	DiffAdded     = DiffType("Added")
)

// Precedence is the fixed category order of the serialized diff
func (d DiffType) Precedence() int {
	switch d {
	case DiffUnchanged:
		return 0
	case DiffMoved:
		return 1
	case DiffRemoved:
		return 2
	default:
		return 3
	}
}

type DiffRecord struct {
	Text       string   `json:"text"`
	DiffType   DiffType `json:"diffType"`
	LineNumber int      `json:"lineNumber"`
}
