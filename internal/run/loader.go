package run

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/coordmatch/internal/discover"
	"github.com/inodb/coordmatch/internal/region"
)

// Options configures a Loader.
type Options struct {
	ParsePolicy ParsePolicy
	MergePolicy MergePolicy
}

// Loader reads discovered files into a Context.
type Loader struct {
	opts   Options
	logger *zap.Logger
	open   func(path string) (io.ReadCloser, error)
}

// NewLoader creates a loader with the given options.
func NewLoader(opts Options) *Loader {
	return &Loader{
		opts:   opts,
		logger: zap.NewNop(),
		open:   func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
}

// SetLogger sets the logger for the file trace.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load consumes files and loads every coordinate and annotation file into rc.
// Each file is closed before the next one is opened. I/O failures are logged
// and the file is abandoned; the returned error is non-nil only under
// ParseAbort or MergeReject.
func (l *Loader) Load(rc *Context, files iter.Seq2[discover.File, error]) error {
	for f, err := range files {
		if err != nil {
			l.logger.Error("directory traversal failed", zap.Error(err))
			continue
		}

		switch f.Kind {
		case discover.KindHidden:
			l.logger.Debug("ignoring hidden file", zap.String("file", f.Path))
			continue
		case discover.KindUnknown:
			l.logger.Info("unknown format, file ignored", zap.String("file", f.Path))
			continue
		}

		l.logger.Info("found input file", zap.String("file", f.Path), zap.Stringer("format", f.Kind))

		if rc.Files[f.Kind] > 0 {
			switch l.opts.MergePolicy {
			case MergeFirst:
				l.logger.Warn("ignoring additional input file", zap.String("file", f.Path), zap.Stringer("format", f.Kind))
				continue
			case MergeReject:
				return fmt.Errorf("%s: %w", f.Path, ErrDuplicateInput)
			default:
				l.logger.Warn("merging additional input file", zap.String("file", f.Path), zap.Stringer("format", f.Kind))
			}
		}

		n, err := l.loadFile(rc, f)
		if err != nil {
			var lerr *LineError
			if errors.As(err, &lerr) {
				return err
			}
			l.logger.Error("file processing aborted", zap.String("file", f.Path), zap.Error(err))
			rc.FailedFiles = append(rc.FailedFiles, f.Path)
			continue
		}
		rc.Files[f.Kind]++

		switch f.Kind {
		case discover.KindCoordinates:
			l.logger.Info("coordinates loaded",
				zap.String("file", f.Path),
				zap.Int("read", n),
				zap.Int("total", len(rc.Coordinates)))
		case discover.KindAnnotations:
			l.logger.Info("gtf entries loaded",
				zap.String("file", f.Path),
				zap.Int("read", n),
				zap.Int("exons", len(rc.Store.Exons())),
				zap.Int("introns", len(rc.Store.Introns())))
		}
	}
	return nil
}

// maxLineSize bounds a single input line. Longer lines are rejected as
// malformed records; the rest of the file is still read.
const maxLineSize = 1024 * 1024

// batch holds the records of one file until the file has been read to the end.
type batch struct {
	coords  []region.Coordinate
	regions []region.Region
}

func (b *batch) len() int {
	return len(b.coords) + len(b.regions)
}

// loadFile reads one file and returns the number of records it added.
// Records are committed to rc only after the whole file was read, so a file
// abandoned on an I/O failure contributes nothing.
// A *LineError is returned only under ParseAbort; other errors are I/O failures.
func (l *Loader) loadFile(rc *Context, f discover.File) (int, error) {
	fh, err := l.open(f.Path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer fh.Close()

	br := bufio.NewReaderSize(fh, 64*1024)

	var b batch
	lineNum := 0
	for {
		line, tooLong, err := readLine(br, maxLineSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read line %d: %w", lineNum+1, err)
		}
		lineNum++

		var perr error
		switch {
		case tooLong:
			perr = &region.ParseError{
				Kind:    region.ErrMalformedRecord,
				Message: fmt.Sprintf("line longer than %d bytes", maxLineSize),
			}
		case region.IsSkippable(line):
			continue
		default:
			perr = l.addRecord(&b, f.Kind, line)
		}

		if perr != nil {
			lerr := &LineError{Path: f.Path, Line: lineNum, Err: perr}
			if l.opts.ParsePolicy == ParseAbort {
				return 0, lerr
			}
			l.logger.Warn("skipping malformed line", zap.Error(lerr))
			rc.SkippedLines++
		}
	}

	rc.Coordinates = append(rc.Coordinates, b.coords...)
	for _, r := range b.regions {
		rc.Store.Add(r)
	}
	return b.len(), nil
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed entirely and reported with tooLong set and no content.
// io.EOF is returned once the input is exhausted.
func readLine(br *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func (l *Loader) addRecord(b *batch, kind discover.Kind, line string) error {
	switch kind {
	case discover.KindCoordinates:
		c, err := region.ParseCoordinateLine(line)
		if err != nil {
			return err
		}
		b.coords = append(b.coords, c)

	case discover.KindAnnotations:
		r, err := region.ParseAnnotationLine(line)
		if err != nil {
			return err
		}
		if r.Start > r.End {
			l.logger.Warn("region starts after it ends; it will never match",
				zap.String("chrom", r.Chrom),
				zap.Int64("start", r.Start),
				zap.Int64("end", r.End))
		}
		b.regions = append(b.regions, r)
	}
	return nil
}
