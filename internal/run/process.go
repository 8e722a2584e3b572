package run

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/region"
)

// ResultWriter receives the report of a run.
type ResultWriter interface {
	WriteHeader(exons, introns int) error
	Write(c region.Coordinate, res index.Result) error
	WriteSummary(matched, unmatched int) error
}

// Summary holds the tallies of a run.
type Summary struct {
	Matched   int
	Unmatched int
}

// Total returns the number of coordinates processed.
func (s Summary) Total() int {
	return s.Matched + s.Unmatched
}

// Processor matches every coordinate of a run against its store.
type Processor struct {
	logger        *zap.Logger
	progressEvery int
	progress      func()
}

// NewProcessor creates a processor with default progress reporting disabled.
func NewProcessor() *Processor {
	return &Processor{
		logger:        zap.NewNop(),
		progressEvery: index.DefaultProgressEvery,
	}
}

// SetLogger sets the logger.
func (p *Processor) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetProgress installs fn to be called every `every` scanned regions.
func (p *Processor) SetProgress(every int, fn func()) {
	p.progressEvery = every
	p.progress = fn
}

// Run finalizes the store if needed, then writes one report line per
// coordinate in input order followed by the summary line.
func (p *Processor) Run(coords []region.Coordinate, store *index.Store, w ResultWriter) (Summary, error) {
	store.Finalize()

	m, err := index.NewMatcher(store)
	if err != nil {
		return Summary{}, err
	}
	if p.progress != nil {
		m.SetProgress(p.progressEvery, p.progress)
	}

	if err := w.WriteHeader(len(store.Exons()), len(store.Introns())); err != nil {
		return Summary{}, fmt.Errorf("write header: %w", err)
	}

	var sum Summary
	for _, c := range coords {
		res := m.Match(c)
		if res.Found {
			sum.Matched++
		} else {
			sum.Unmatched++
		}
		if err := w.Write(c, res); err != nil {
			return sum, fmt.Errorf("write result: %w", err)
		}
	}

	if err := w.WriteSummary(sum.Matched, sum.Unmatched); err != nil {
		return sum, fmt.Errorf("write summary: %w", err)
	}

	p.logger.Info("chromosome map processed",
		zap.Int("coordinates", sum.Total()),
		zap.Int("matched", sum.Matched),
		zap.Int("unmatched", sum.Unmatched),
		zap.Int("regions_scanned", m.Scanned()))

	return sum, nil
}
