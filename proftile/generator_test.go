package proftile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorFetchSummaryTileOnSlotPanicsNotASummary(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 1, Nodes: 1, Procs: 1, Kinds: []string{"CPU"}})
	slotID := RootEntryID().Child(0).Child(0).Child(0)
	tile := TileID{Interval: NewInterval(0, 1000)}
	assert.PanicsWithValue(t, ErrNotASummary, func() {
		gen.FetchSummaryTile(slotID, tile, false)
	})
}

func TestGeneratorFetchSlotTileOnSummaryPanicsNotASlot(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 1, Nodes: 1, Procs: 1, Kinds: []string{"CPU"}})
	summaryID := RootEntryID().Child(0).Child(0).Summary()
	tile := TileID{Interval: NewInterval(0, 1000)}
	assert.PanicsWithValue(t, ErrNotASlot, func() {
		gen.FetchSlotTile(summaryID, tile, false)
	})
}

func TestGeneratorFetchSummaryTileDeterministic(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Seed: 42, Nodes: 1, Procs: 1, Kinds: []string{"CPU"}})
	summaryID := RootEntryID().Child(0).Child(0).Summary()
	info := gen.FetchInfo()

	tile, err := gen.FetchSummaryTile(summaryID, TileID{Interval: info.Interval}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, tile.Data.Utilization)

	again, err := gen.FetchSummaryTile(summaryID, TileID{Interval: info.Interval}, true)
	require.NoError(t, err)
	assert.Equal(t, tile.Data, again.Data, "repeated fetches of the same tile must be cached/deterministic")
}
