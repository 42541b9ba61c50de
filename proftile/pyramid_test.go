package proftile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPyramidSelectorDynamicSourceIntersects(t *testing.T) {
	var sel PyramidSelector
	info := DataSourceInfo{Interval: NewInterval(0, 1000)}
	tiles := sel.RequestTiles(info, NewInterval(100, 300))
	require.Len(t, tiles, 1)
	assert.Equal(t, NewInterval(100, 300), tiles[0].Interval)
}

func TestPyramidSelectorStaticSourcePicksClosestLevel(t *testing.T) {
	var sel PyramidSelector
	info := DataSourceInfo{
		Interval: NewInterval(0, 1_000_000),
		TileSet: TileSet{Levels: [][]TileID{
			{{Interval: NewInterval(0, 1_000_000)}},
			{{Interval: NewInterval(0, 100_000)}, {Interval: NewInterval(100_000, 1_000_000)}},
			{{Interval: NewInterval(0, 1_000)}, {Interval: NewInterval(1_000, 1_000_000)}},
		},
	}}

	tiles := sel.RequestTiles(info, NewInterval(0, 100_000))
	require.NotEmpty(t, tiles)
	assert.Equal(t, []TileID{{Interval: NewInterval(0, 100_000)}}, tiles, "level 1's 100_000 ns tiles match the viewport exactly")
	for _, tile := range tiles {
		assert.True(t, tile.Interval.Overlaps(NewInterval(0, 100_000)))
	}
}

func TestPyramidSelectorMemoizesIdenticalViewport(t *testing.T) {
	var sel PyramidSelector
	info := DataSourceInfo{Interval: NewInterval(0, 1000)}
	first := sel.RequestTiles(info, NewInterval(0, 500))
	second := sel.RequestTiles(info, NewInterval(0, 500))
	assert.Equal(t, first, second)

	third := sel.RequestTiles(info, NewInterval(0, 900))
	assert.NotEqual(t, first, third)
}
