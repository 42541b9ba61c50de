package proftile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSlotPanel() EntryInfo {
	return EntryInfo{
		Kind: EntryKindPanel,
		Slots: []EntryInfo{
			{Kind: EntryKindSlot, ShortName: "a"},
			{Kind: EntryKindSlot, ShortName: "b"},
		},
	}
}

func oneSlotPanel() EntryInfo {
	return EntryInfo{
		Kind: EntryKindPanel,
		Slots: []EntryInfo{
			{Kind: EntryKindSlot, ShortName: "c"},
		},
	}
}

func TestMergeEntryConcatenatesSlotsInOrder(t *testing.T) {
	merged := mergeEntry(twoSlotPanel(), oneSlotPanel())
	require.Len(t, merged.Slots, 3)
	assert.Equal(t, "a", merged.Slots[0].ShortName)
	assert.Equal(t, "b", merged.Slots[1].ShortName)
	assert.Equal(t, "c", merged.Slots[2].ShortName)
}

func TestMergeEntryPanicsOnNonPanel(t *testing.T) {
	slot := EntryInfo{Kind: EntryKindSlot}
	assert.Panics(t, func() { mergeEntry(slot, twoSlotPanel()) })
}

func TestComputeMappingAndMergeInfos(t *testing.T) {
	schema := NewFieldSchema()
	infos := []DataSourceInfo{
		{EntryInfo: twoSlotPanel(), Interval: NewInterval(0, 100), FieldSchema: schema},
		{EntryInfo: oneSlotPanel(), Interval: NewInterval(50, 150), FieldSchema: schema},
	}

	mapping := computeMapping(infos)
	assert.Equal(t, []uint64{0, 2}, mapping)

	merged := mergeInfos(infos)
	assert.Equal(t, NewInterval(0, 150), merged.Interval)
	assert.Len(t, merged.EntryInfo.Slots, 3)
}

func TestMergeInfosPanicsOnFieldSchemaMismatch(t *testing.T) {
	a := NewFieldSchema()
	a.Insert("tid", true)
	b := NewFieldSchema()
	b.Insert("other", false)

	infos := []DataSourceInfo{
		{EntryInfo: twoSlotPanel(), Interval: NewInterval(0, 100), FieldSchema: a},
		{EntryInfo: oneSlotPanel(), Interval: NewInterval(0, 100), FieldSchema: b},
	}
	assert.PanicsWithValue(t, ErrFieldSchemaMismatch, func() { mergeInfos(infos) })
}

func TestMapEntryRoundTrip(t *testing.T) {
	mapping := []uint64{0, 2}

	idx, src := mapDstToSrcEntry(mapping, RootEntryID().Child(0))
	assert.Equal(t, 0, idx)
	assert.Equal(t, RootEntryID().Child(0), src)

	idx, src = mapDstToSrcEntry(mapping, RootEntryID().Child(2))
	assert.Equal(t, 1, idx)
	assert.Equal(t, RootEntryID().Child(0), src)

	dst := mapSrcToDstEntry(mapping, 1, RootEntryID().Child(0))
	assert.Equal(t, RootEntryID().Child(2), dst)
}

func TestMapSrcToDstItemUID(t *testing.T) {
	assert.EqualValues(t, 11, mapSrcToDstItemUID(2, 1, 5))
	assert.EqualValues(t, 10, mapSrcToDstItemUID(2, 0, 5))
}

func TestMergeDeferredDataSourceFetchInfo(t *testing.T) {
	schema := NewFieldSchema()
	a := &fakeDeferredSource{locator: "a"}
	b := &fakeDeferredSource{locator: "b"}
	merged := NewMergeDeferredDataSource([]DeferredDataSource{a, b})

	desc := merged.FetchDescription()
	assert.Equal(t, []string{"a", "b"}, desc.SourceLocator)

	merged.FetchInfo()
	// Give each child's pending reply (queued by the broadcast) its shape.
	a.infos[0] = DataSourceInfo{EntryInfo: twoSlotPanel(), Interval: NewInterval(0, 100), FieldSchema: schema}
	b.infos[0] = DataSourceInfo{EntryInfo: oneSlotPanel(), Interval: NewInterval(50, 150), FieldSchema: schema}
	infos := merged.GetInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, NewInterval(0, 150), infos[0].Interval)
	assert.Len(t, infos[0].EntryInfo.Slots, 3)

	merged.FetchSummaryTile(RootEntryID().Child(2), TileID{Interval: NewInterval(0, 10)}, false)
	tiles := merged.GetSummaryTiles()
	require.Len(t, tiles, 1)
	assert.Equal(t, RootEntryID().Child(2), tiles[0].EntryID, "source b's slot 0 remaps to merged index 2")
}
