package proftile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelDeferredDataSourceDrainsAllFetches(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 1, Nodes: 1, Procs: 1, Kinds: []string{"CPU"}})
	par := NewParallelDeferredDataSource(gen, 2)

	for i := 0; i < 5; i++ {
		par.FetchInfo()
	}
	require.NoError(t, par.Wait())
	infos := par.GetInfos()
	assert.Len(t, infos, 5)
	assert.Empty(t, par.GetInfos())
}

func TestParallelDeferredDataSourceSlotTiles(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 1, Nodes: 1, Procs: 1, Kinds: []string{"CPU"}})
	par := NewParallelDeferredDataSource(gen, 0)

	slotID := RootEntryID().Child(0).Child(0).Child(0)
	tile := TileID{Interval: NewInterval(0, 1000)}
	// Generator fills its slot cache on first fetch and is not thread-safe;
	// warm the cache so the concurrent fetches below only read it.
	_, err := gen.FetchSlotTile(slotID, tile, true)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		par.FetchSlotTile(slotID, tile, true)
	}
	require.NoError(t, par.Wait())
	tiles := par.GetSlotTiles()
	assert.Len(t, tiles, 3)
	for _, st := range tiles {
		assert.Equal(t, slotID, st.EntryID)
	}
}
