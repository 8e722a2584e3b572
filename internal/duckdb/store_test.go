package duckdb

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/coordmatch/internal/index"
	"github.com/inodb/coordmatch/internal/region"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptySchema(t *testing.T) {
	s := openInMemory(t)

	counts, err := s.ChromosomeCounts()
	require.NoError(t, err)
	assert.Empty(t, counts)

	results, err := s.Resolve()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolve_ExonBeforeIntron(t *testing.T) {
	s := openInMemory(t)

	store := index.New(index.OrderTuple)
	store.Add(region.Region{Chrom: "chr1", Feature: "intron", Start: 1, End: 1000, Intron: true})
	store.Add(region.Region{Chrom: "chr1", Feature: "exon", Start: 400, End: 500, Attributes: `gene_name "A";`})
	store.Add(region.Region{Chrom: "chr1", Feature: "exon", Start: 450, End: 900, Attributes: `gene_name "B";`})
	store.Finalize()

	require.NoError(t, s.LoadRegions(store.Exons(), store.Introns()))
	require.NoError(t, s.LoadCoordinates([]region.Coordinate{
		{Chrom: "chr1", Pos: 460},
		{Chrom: "chr1", Pos: 950},
		{Chrom: "chr2", Pos: 460},
		{Chrom: "chr1", Pos: 800},
	}))

	results, err := s.Resolve()
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "A", results[0].Region.Name(), "first exon in sorted order wins")
	assert.True(t, results[1].Region.Intron)
	assert.False(t, results[2].Found)
	assert.Equal(t, "B", results[3].Region.Name())
}

func TestResolve_AgreesWithMatcher(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	chroms := []string{"chr1", "chr2", "chr10"}

	store := index.New(index.OrderTuple)
	for i := 0; i < 400; i++ {
		start := rng.Int63n(20000)
		r := region.Region{Chrom: chroms[rng.Intn(len(chroms))], Feature: "exon", Start: start, End: start + rng.Int63n(800)}
		if rng.Intn(3) == 0 {
			r.Feature, r.Intron = "intron", true
		}
		store.Add(r)
	}
	store.Finalize()

	coords := make([]region.Coordinate, 300)
	for i := range coords {
		coords[i] = region.Coordinate{Chrom: chroms[rng.Intn(len(chroms))], Pos: rng.Int63n(21000)}
	}

	s := openInMemory(t)
	require.NoError(t, s.LoadRegions(store.Exons(), store.Introns()))
	require.NoError(t, s.LoadCoordinates(coords))

	results, err := s.Resolve()
	require.NoError(t, err)
	require.Len(t, results, len(coords))

	m, err := index.NewMatcher(store)
	require.NoError(t, err)
	for i, c := range coords {
		assert.Equal(t, m.Match(c), results[i], "coordinate %v", c)
	}
}

func TestChromosomeCounts(t *testing.T) {
	s := openInMemory(t)

	exons := []region.Region{{Chrom: "chr1"}, {Chrom: "chr1"}, {Chrom: "chr2"}}
	introns := []region.Region{{Chrom: "chr2", Intron: true}}
	require.NoError(t, s.LoadRegions(exons, introns))

	counts, err := s.ChromosomeCounts()
	require.NoError(t, err)
	assert.Equal(t, []ChromCount{
		{Chrom: "chr1", Exons: 2, Introns: 0},
		{Chrom: "chr2", Exons: 1, Introns: 1},
	}, counts)
}

func TestResolve_Empty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.LoadRegions(nil, nil))
	require.NoError(t, s.LoadCoordinates(nil))

	results, err := s.Resolve()
	require.NoError(t, err)
	assert.Empty(t, results)
}
