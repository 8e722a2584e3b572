package region

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse error kinds. A *ParseError matches one of these with errors.Is.
var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrMalformedNumber = errors.New("malformed number")
)

const (
	annotationFields = 9
	coordinateFields = 2
)

// ParseError describes why a single line could not be parsed.
type ParseError struct {
	Kind    error
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap exposes the error kind.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// IsSkippable reports whether a line carries no record: empty lines and
// '#' comment or header lines.
func IsSkippable(line string) bool {
	line = strings.TrimRight(line, "\r\n")
	return strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#")
}

// ParseAnnotationLine parses a tab-separated GTF line into a Region.
// Columns used: 0 chrom, 1 source, 2 feature, 3 start, 4 end, 6 strand,
// 8 attributes. Score (5) and frame (7) are ignored.
func ParseAnnotationLine(line string) (Region, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < annotationFields {
		return Region{}, &ParseError{
			Kind:    ErrMalformedRecord,
			Message: fmt.Sprintf("expected at least %d columns, found %d", annotationFields, len(fields)),
		}
	}

	start, err := parseInt("start", fields[3])
	if err != nil {
		return Region{}, err
	}
	end, err := parseInt("end", fields[4])
	if err != nil {
		return Region{}, err
	}

	return Region{
		Chrom:      fields[0],
		Source:     fields[1],
		Feature:    fields[2],
		Start:      start,
		End:        end,
		Intron:     strings.EqualFold(fields[2], "intron"),
		Strand:     fields[6],
		Attributes: fields[8],
	}, nil
}

// ParseCoordinateLine parses a "chrom<TAB>position" line. Columns beyond
// the second are ignored.
func ParseCoordinateLine(line string) (Coordinate, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < coordinateFields {
		return Coordinate{}, &ParseError{
			Kind:    ErrMalformedRecord,
			Message: fmt.Sprintf("expected at least %d columns, found %d", coordinateFields, len(fields)),
		}
	}

	pos, err := parseInt("position", fields[1])
	if err != nil {
		return Coordinate{}, err
	}
	if pos < 0 {
		return Coordinate{}, &ParseError{
			Kind:    ErrMalformedNumber,
			Message: fmt.Sprintf("negative position: %d", pos),
		}
	}

	return Coordinate{Chrom: fields[0], Pos: pos}, nil
}

func parseInt(name, s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &ParseError{
			Kind:    ErrMalformedNumber,
			Message: fmt.Sprintf("invalid %s: %q", name, s),
		}
	}
	return v, nil
}
