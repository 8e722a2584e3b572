package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/region"
)

// ChromCount holds per-chromosome region counts.
type ChromCount struct {
	Chrom   string
	Exons   int64
	Introns int64
}

// LoadRegions bulk-inserts the sorted exon and intron collections. Each
// region keeps its position in its collection as ord, so "first match in
// sorted order" becomes "smallest ord".
func (s *Store) LoadRegions(exons, introns []region.Region) error {
	if err := s.withAppender("regions", func(a *goduckdb.Appender) error {
		for kind, rs := range map[string][]region.Region{kindExon: exons, kindIntron: introns} {
			for i := range rs {
				r := &rs[i]
				if err := a.AppendRow(
					kind, int64(i), r.Chrom, r.Source, r.Feature,
					r.Start, r.End, r.Strand, r.Attributes, r.Name(),
				); err != nil {
					return fmt.Errorf("append region: %w", err)
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	s.exons = exons
	s.introns = introns
	return nil
}

// LoadCoordinates bulk-inserts coordinates in input order.
func (s *Store) LoadCoordinates(coords []region.Coordinate) error {
	return s.withAppender("coordinates", func(a *goduckdb.Appender) error {
		for i, c := range coords {
			if err := a.AppendRow(int64(i), c.Chrom, c.Pos); err != nil {
				return fmt.Errorf("append coordinate: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) withAppender(table string, fn func(a *goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// Resolve matches every loaded coordinate in SQL: the lowest-ord exon on the
// same chromosome containing the position, else the lowest-ord intron.
// Results are returned in coordinate input order. The answer equals the scan
// matcher's only when the collections were sorted by (chrom, start).
func (s *Store) Resolve() ([]index.Result, error) {
	rows, err := s.db.Query(`SELECT
		c.ord,
		(SELECT min(r.ord) FROM regions r
			WHERE r.kind = 'exon' AND r.chrom = c.chrom
			AND r.start_pos <= c.pos AND c.pos <= r.end_pos) AS exon_ord,
		(SELECT min(r.ord) FROM regions r
			WHERE r.kind = 'intron' AND r.chrom = c.chrom
			AND r.start_pos <= c.pos AND c.pos <= r.end_pos) AS intron_ord
		FROM coordinates c
		ORDER BY c.ord`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var results []index.Result
	for rows.Next() {
		var ord int64
		var exonOrd, intronOrd sql.NullInt64
		if err := rows.Scan(&ord, &exonOrd, &intronOrd); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}

		var res index.Result
		switch {
		case exonOrd.Valid:
			res = index.Result{Region: s.exons[exonOrd.Int64], Found: true}
		case intronOrd.Valid:
			res = index.Result{Region: s.introns[intronOrd.Int64], Found: true}
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return results, nil
}

// ChromosomeCounts returns exon and intron counts per chromosome, ordered by chromosome.
func (s *Store) ChromosomeCounts() ([]ChromCount, error) {
	rows, err := s.db.Query(`SELECT
		chrom,
		count(*) FILTER (WHERE kind = 'exon'),
		count(*) FILTER (WHERE kind = 'intron')
		FROM regions
		GROUP BY chrom
		ORDER BY chrom`)
	if err != nil {
		return nil, fmt.Errorf("query chromosome counts: %w", err)
	}
	defer rows.Close()

	var counts []ChromCount
	for rows.Next() {
		var c ChromCount
		if err := rows.Scan(&c.Chrom, &c.Exons, &c.Introns); err != nil {
			return nil, fmt.Errorf("scan chromosome count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chromosome counts: %w", err)
	}
	return counts, nil
}
