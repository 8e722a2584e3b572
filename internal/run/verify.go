package run

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/coordmatch/internal/duckdb"
	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/output"
)

// ErrVerifyOrder is returned when verification is requested for a store that
// is not sorted by (chrom, start).
var ErrVerifyOrder = errors.New("verification requires the tuple sort order")

// Verify resolves every coordinate of rc a second time with DuckDB and
// writes the comparison with the scan matcher to w. It returns the number
// of disagreeing coordinates. The store must be finalized.
func Verify(rc *Context, w *output.VerifyWriter, logger *zap.Logger) (int, error) {
	if rc.Store.Order() != index.OrderTuple {
		return 0, ErrVerifyOrder
	}
	m, err := index.NewMatcher(rc.Store)
	if err != nil {
		return 0, err
	}

	db, err := duckdb.Open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := db.LoadRegions(rc.Store.Exons(), rc.Store.Introns()); err != nil {
		return 0, fmt.Errorf("load regions: %w", err)
	}
	if err := db.LoadCoordinates(rc.Coordinates); err != nil {
		return 0, fmt.Errorf("load coordinates: %w", err)
	}

	counts, err := db.ChromosomeCounts()
	if err != nil {
		return 0, err
	}
	for _, c := range counts {
		logger.Info("regions per chromosome",
			zap.String("chrom", c.Chrom),
			zap.Int64("exons", c.Exons),
			zap.Int64("introns", c.Introns))
	}

	resolved, err := db.Resolve()
	if err != nil {
		return 0, err
	}
	if len(resolved) != len(rc.Coordinates) {
		return 0, fmt.Errorf("resolved %d coordinates, expected %d", len(resolved), len(rc.Coordinates))
	}

	if err := w.WriteHeader(); err != nil {
		return 0, fmt.Errorf("write verify header: %w", err)
	}
	for i, c := range rc.Coordinates {
		if err := w.WriteComparison(c, m.Match(c), resolved[i]); err != nil {
			return 0, fmt.Errorf("write comparison: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("flush verify output: %w", err)
	}

	total, _, mismatches := w.Summary()
	logger.Info("verification complete", zap.Int("coordinates", total), zap.Int("disagreements", mismatches))
	return mismatches, nil
}
