// Package region provides the coordinate and annotation record types and
// their tab-delimited line parsers.
package region

import "strings"

// Coordinate is a chromosome position to be classified against annotation regions.
type Coordinate struct {
	Chrom string
	Pos   int64
}

// Region is a single annotation record (one GTF line).
// Start and End are inclusive. Start > End is accepted as-is; such a region
// never contains any position.
type Region struct {
	Chrom      string
	Source     string
	Feature    string
	Start      int64
	End        int64
	Intron     bool
	Strand     string
	Attributes string
}

// Contains reports whether pos lies in [Start, End].
func (r *Region) Contains(pos int64) bool {
	return pos >= r.Start && pos <= r.End
}

// Name returns a display name for the region: gene_name, then gene_id,
// then transcript_id. Returns "" when the attribute column carries none of them.
func (r *Region) Name() string {
	attrs := parseAttributes(r.Attributes)
	for _, k := range []string{"gene_name", "gene_id", "transcript_id"} {
		if v := attrs[k]; v != "" {
			return v
		}
	}
	return ""
}

// parseAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Find the first space to separate key from value
		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.TrimSpace(part[idx+1:])
		attrs[key] = strings.Trim(value, "\"")
	}

	return attrs
}
