package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/region"
)

// VerifyWriter writes a comparison between the scan matcher and an
// independent resolution of the same coordinates.
type VerifyWriter struct {
	w          *tabwriter.Writer
	matches    int
	mismatches int
	total      int
	showAll    bool // if false, only show mismatches
}

// NewVerifyWriter creates a new verification writer.
func NewVerifyWriter(w io.Writer, showAll bool) *VerifyWriter {
	return &VerifyWriter{
		w:       tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		showAll: showAll,
	}
}

// WriteHeader writes the column header.
func (v *VerifyWriter) WriteHeader() error {
	_, err := fmt.Fprintln(v.w, "Coordinate\tScan\tSQL\tMatch")
	return err
}

// WriteComparison records one coordinate. Two results agree when both are
// not found, or both found the same region.
func (v *VerifyWriter) WriteComparison(c region.Coordinate, scan, sql index.Result) error {
	v.total++

	same := scan.Found == sql.Found && (!scan.Found || scan.Region == sql.Region)
	matchStr := "Y"
	if same {
		v.matches++
	} else {
		v.mismatches++
		matchStr = "N"
	}

	if v.showAll || !same {
		_, err := fmt.Fprintf(v.w, "%s:%d\t%s\t%s\t%s\n",
			c.Chrom, c.Pos, Describe(scan), Describe(sql), matchStr)
		return err
	}
	return nil
}

// Flush flushes the writer.
func (v *VerifyWriter) Flush() error {
	return v.w.Flush()
}

// Summary returns comparison statistics.
func (v *VerifyWriter) Summary() (total, matches, mismatches int) {
	return v.total, v.matches, v.mismatches
}

// WriteSummary writes a summary of the comparison.
func (v *VerifyWriter) WriteSummary(w io.Writer) {
	matchRate := float64(0)
	if v.total > 0 {
		matchRate = float64(v.matches) / float64(v.total) * 100
	}
	fmt.Fprintf(w, "\nVerification Summary:\n")
	fmt.Fprintf(w, "  Total coordinates: %d\n", v.total)
	fmt.Fprintf(w, "  Agree:             %d (%.1f%%)\n", v.matches, matchRate)
	fmt.Fprintf(w, "  Disagree:          %d (%.1f%%)\n", v.mismatches, 100-matchRate)
}

// Describe renders a result compactly, e.g. "exon chr1:100-200 KRAS".
func Describe(res index.Result) string {
	if !res.Found {
		return "-"
	}
	r := res.Region
	s := fmt.Sprintf("%s %s:%d-%d", r.Feature, r.Chrom, r.Start, r.End)
	if name := r.Name(); name != "" {
		s += " " + name
	}
	return s
}
