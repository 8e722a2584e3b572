// Package index holds annotation regions in sorted exon and intron
// collections and answers which region contains a coordinate.
package index

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/coordmatch/internal/region"
)

// Order selects the compound sort key used by Finalize.
type Order int

const (
	// OrderTuple sorts by (chrom, start): chrom as a string, start numerically.
	OrderTuple Order = iota
	// OrderConcat sorts by the text chrom+decimal(start). This reproduces the
	// ordering of the legacy tool, where "chr1"+"100" sorts after "chr10"+"5".
	OrderConcat
)

func (o Order) String() string {
	switch o {
	case OrderTuple:
		return "tuple"
	case OrderConcat:
		return "concat"
	}
	return fmt.Sprintf("Order(%d)", int(o))
}

// ParseOrder converts a configuration value to an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tuple":
		return OrderTuple, nil
	case "concat":
		return OrderConcat, nil
	}
	return 0, fmt.Errorf("unknown sort order %q (want tuple or concat)", s)
}

// Less reports whether a sorts before b under the given order.
func Less(order Order, a, b *region.Region) bool {
	if order == OrderConcat {
		return concatKey(a) < concatKey(b)
	}
	if a.Chrom != b.Chrom {
		return a.Chrom < b.Chrom
	}
	return a.Start < b.Start
}

func concatKey(r *region.Region) string {
	return r.Chrom + strconv.FormatInt(r.Start, 10)
}

// Store holds exon and intron regions. Regions are appended with Add and
// sorted once with Finalize; the collections are not modified afterwards.
type Store struct {
	exons     []region.Region
	introns   []region.Region
	order     Order
	finalized bool
}

// New creates an empty store that will sort with the given order.
func New(order Order) *Store {
	return &Store{order: order}
}

// Add appends a region to the intron collection if r.Intron is set, else to
// the exon collection. Duplicates are kept. Adding after Finalize panics.
func (s *Store) Add(r region.Region) {
	if s.finalized {
		panic("index: Add called after Finalize")
	}
	if r.Intron {
		s.introns = append(s.introns, r)
	} else {
		s.exons = append(s.exons, r)
	}
}

// Finalize sorts both collections by the compound key. The sort is stable,
// so regions with equal keys keep their insertion order. Calling it again
// is a no-op.
func (s *Store) Finalize() {
	if s.finalized {
		return
	}
	s.sortRegions(s.exons)
	s.sortRegions(s.introns)
	s.finalized = true
}

func (s *Store) sortRegions(regions []region.Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		return Less(s.order, &regions[i], &regions[j])
	})
}

// Finalized reports whether Finalize has been called.
func (s *Store) Finalized() bool {
	return s.finalized
}

// Order returns the sort order used by the store.
func (s *Store) Order() Order {
	return s.order
}

// Exons returns the exon collection. Callers must not modify it.
func (s *Store) Exons() []region.Region {
	return s.exons
}

// Introns returns the intron collection. Callers must not modify it.
func (s *Store) Introns() []region.Region {
	return s.introns
}

// Len returns the total number of regions.
func (s *Store) Len() int {
	return len(s.exons) + len(s.introns)
}

// Chromosomes returns the sorted, distinct chromosome names across both collections.
func (s *Store) Chromosomes() []string {
	seen := make(map[string]bool)
	for _, rs := range [][]region.Region{s.exons, s.introns} {
		for i := range rs {
			seen[rs[i].Chrom] = true
		}
	}
	chroms := make([]string, 0, len(seen))
	for chrom := range seen {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}
