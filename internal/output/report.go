// Package output provides the report and log streams of a matching run.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/region"
)

// ReportWriter appends lines to the report stream. Every line is flushed
// as soon as it is written and mirrored to the console writer, if any.
type ReportWriter struct {
	w       *bufio.Writer
	console io.Writer
}

// NewReportWriter creates a report writer over w. console may be nil.
func NewReportWriter(w io.Writer, console io.Writer) *ReportWriter {
	return &ReportWriter{
		w:       bufio.NewWriter(w),
		console: console,
	}
}

// WriteLine appends a single line.
func (rw *ReportWriter) WriteLine(line string) error {
	if _, err := rw.w.WriteString(line + "\n"); err != nil {
		return err
	}
	if err := rw.w.Flush(); err != nil {
		return err
	}
	if rw.console != nil {
		if _, err := io.WriteString(rw.console, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteHeader writes the region counts that precede the per-coordinate lines.
func (rw *ReportWriter) WriteHeader(exons, introns int) error {
	if err := rw.WriteLine(fmt.Sprintf("Number of Introns found: %d", introns)); err != nil {
		return err
	}
	return rw.WriteLine(fmt.Sprintf("Number of Exons found: %d", exons))
}

// Write writes the report line for one coordinate.
func (rw *ReportWriter) Write(c region.Coordinate, res index.Result) error {
	return rw.WriteLine(FormatResult(c, res))
}

// WriteSummary writes the closing totals line.
func (rw *ReportWriter) WriteSummary(matched, unmatched int) error {
	return rw.WriteLine(fmt.Sprintf("Total matches found: %d\tTotal NOT found: %d", matched, unmatched))
}

// Flush flushes any buffered data to the underlying writer.
func (rw *ReportWriter) Flush() error {
	return rw.w.Flush()
}

// FormatResult renders the report line for one coordinate.
func FormatResult(c region.Coordinate, res index.Result) string {
	if !res.Found {
		return fmt.Sprintf("No match found for: %s at location: %d", c.Chrom, c.Pos)
	}

	r := res.Region
	values := []string{
		fmt.Sprintf(">%s at location: %d", c.Chrom, c.Pos),
		"Found",
		r.Chrom,
		dash(r.Source),
		dash(r.Feature),
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		dash(r.Strand),
		dash(r.Attributes),
	}
	return strings.Join(values, "\t")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
