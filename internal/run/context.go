// Package run loads the input files of a matching run and drives the matcher
// over every coordinate.
package run

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/coordmatch/internal/discover"
	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/region"
)

// ParsePolicy decides what happens when a line cannot be parsed.
type ParsePolicy int

const (
	// ParseSkip logs the offending line and continues with the next one.
	ParseSkip ParsePolicy = iota
	// ParseAbort stops loading at the first bad line.
	ParseAbort
)

func (p ParsePolicy) String() string {
	if p == ParseAbort {
		return "abort"
	}
	return "skip"
}

// ParseParsePolicy converts a configuration value to a ParsePolicy.
func ParseParsePolicy(s string) (ParsePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return ParseSkip, nil
	case "abort":
		return ParseAbort, nil
	}
	return 0, fmt.Errorf("unknown parse error policy %q (want skip or abort)", s)
}

// MergePolicy decides what happens when the tree holds more than one file
// of the same kind.
type MergePolicy int

const (
	// MergeAll loads every file; records of the same kind share one collection.
	MergeAll MergePolicy = iota
	// MergeFirst loads the first file of each kind in walk order and ignores the rest.
	MergeFirst
	// MergeReject fails the load when a second file of a kind is found.
	MergeReject
)

func (p MergePolicy) String() string {
	switch p {
	case MergeFirst:
		return "first"
	case MergeReject:
		return "reject"
	}
	return "all"
}

// ParseMergePolicy converts a configuration value to a MergePolicy.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return MergeAll, nil
	case "first":
		return MergeFirst, nil
	case "reject":
		return MergeReject, nil
	}
	return 0, fmt.Errorf("unknown merge policy %q (want all, first or reject)", s)
}

// ErrDuplicateInput is returned under MergeReject when a kind repeats.
var ErrDuplicateInput = errors.New("more than one input file of the same kind")

// LineError locates a parse failure in an input file.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Context owns everything a run accumulates: the coordinates in input order,
// the annotation store, and bookkeeping about the files read.
type Context struct {
	Coordinates []region.Coordinate
	Store       *index.Store

	// Files counts the files loaded per kind.
	Files map[discover.Kind]int
	// SkippedLines counts lines rejected under ParseSkip.
	SkippedLines int
	// FailedFiles lists files abandoned because of an I/O failure.
	FailedFiles []string
}

// NewContext creates an empty run context whose store sorts with order.
func NewContext(order index.Order) *Context {
	return &Context{
		Store: index.New(order),
		Files: make(map[discover.Kind]int),
	}
}

// Ready reports whether at least one coordinate file and one annotation
// file were loaded.
func (c *Context) Ready() bool {
	return c.Files[discover.KindCoordinates] > 0 && c.Files[discover.KindAnnotations] > 0
}

// LogSummary reports the lines skipped and the files abandoned while loading.
func (c *Context) LogSummary(logger *zap.Logger) {
	if c.SkippedLines > 0 {
		logger.Warn("malformed lines skipped", zap.Int("lines", c.SkippedLines))
	}
	if len(c.FailedFiles) > 0 {
		logger.Warn("input files failed to load",
			zap.Int("files", len(c.FailedFiles)),
			zap.Strings("paths", c.FailedFiles))
	}
}
