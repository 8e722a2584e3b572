package index

import (
	"errors"
	"sort"

	"github.com/inodb/coordmatch/internal/region"
)

// ErrNotFinalized is returned when matching against a store that has not been sorted.
var ErrNotFinalized = errors.New("index: store not finalized")

// DefaultProgressEvery is the number of scanned regions between progress callbacks.
const DefaultProgressEvery = 25000

// Result is the outcome of matching one coordinate.
type Result struct {
	Region region.Region
	Found  bool
}

// FindContaining scans regions from the start and returns the index of the
// first region on chrom that contains pos. The scan stops at the first region
// whose chromosome sorts after chrom, so regions must be sorted by chromosome.
func FindContaining(regions []region.Region, chrom string, pos int64) (int, bool) {
	idx, _ := scan(regions, 0, chrom, pos, false)
	return idx, idx >= 0
}

// scan walks regions from index from. When bounded is set the regions on
// chrom are known to be sorted by start, and the scan also stops at the
// first region that starts after pos. It returns the match index (or -1)
// and the number of regions visited.
func scan(regions []region.Region, from int, chrom string, pos int64, bounded bool) (int, int) {
	n := 0
	for i := from; i < len(regions); i++ {
		r := &regions[i]
		n++
		if r.Chrom == chrom {
			if r.Contains(pos) {
				return i, n
			}
			if bounded && r.Start > pos {
				return -1, n
			}
			continue
		}
		if r.Chrom > chrom {
			return -1, n
		}
	}
	return -1, n
}

// blockStart returns the index of the first region on chrom, or of the
// first region whose chromosome sorts after it. Valid only for OrderTuple.
func blockStart(regions []region.Region, chrom string) int {
	return sort.Search(len(regions), func(i int) bool {
		return regions[i].Chrom >= chrom
	})
}

// Matcher resolves coordinates against a finalized Store. Exons take
// precedence: introns are searched only when no exon contains the coordinate.
type Matcher struct {
	store   *Store
	indexed bool

	progressEvery int
	progress      func()
	scanned       int
}

// NewMatcher creates a matcher over s. With OrderTuple the matcher jumps to
// the chromosome block with a binary search; with OrderConcat it scans
// linearly from the start, as chromosome blocks are not contiguous.
func NewMatcher(s *Store) (*Matcher, error) {
	if !s.Finalized() {
		return nil, ErrNotFinalized
	}
	return &Matcher{
		store:         s,
		indexed:       s.Order() == OrderTuple,
		progressEvery: DefaultProgressEvery,
	}, nil
}

// SetProgress installs fn to be called once every `every` scanned regions.
// A non-positive every disables progress callbacks.
func (m *Matcher) SetProgress(every int, fn func()) {
	m.progressEvery = every
	m.progress = fn
}

// Scanned returns the total number of regions visited so far.
func (m *Matcher) Scanned() int {
	return m.scanned
}

// Match returns the first exon containing c, else the first intron
// containing c, else a Result with Found unset.
func (m *Matcher) Match(c region.Coordinate) Result {
	if r, ok := m.find(m.store.Exons(), c); ok {
		return Result{Region: r, Found: true}
	}
	if r, ok := m.find(m.store.Introns(), c); ok {
		return Result{Region: r, Found: true}
	}
	return Result{}
}

func (m *Matcher) find(regions []region.Region, c region.Coordinate) (region.Region, bool) {
	from := 0
	if m.indexed {
		from = blockStart(regions, c.Chrom)
	}
	idx, n := scan(regions, from, c.Chrom, c.Pos, m.indexed)
	m.tick(n)
	if idx < 0 {
		return region.Region{}, false
	}
	return regions[idx], true
}

func (m *Matcher) tick(n int) {
	if m.progress == nil || m.progressEvery <= 0 {
		m.scanned += n
		return
	}
	before := m.scanned / m.progressEvery
	m.scanned += n
	for i := before; i < m.scanned/m.progressEvery; i++ {
		m.progress()
	}
}
