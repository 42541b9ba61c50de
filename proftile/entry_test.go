package proftile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryIDChildSummarySlug(t *testing.T) {
	root := RootEntryID()
	a := root.Child(3).Summary().Child(0)
	assert.Equal(t, "3_-1_0", a.Slug())

	parsed, err := ParseEntryID("3_-1_0")
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestEntryIDHasPrefix(t *testing.T) {
	root := RootEntryID()
	parent := root.Child(3)
	child := parent.Child(1)
	assert.True(t, child.HasPrefix(parent))
	assert.True(t, child.HasPrefix(child))
	assert.False(t, parent.HasPrefix(child))
}

func TestEntryIDIndex(t *testing.T) {
	id := RootEntryID().Child(5).Summary()
	assert.EqualValues(t, 5, id.Index(0).Slot)
	assert.False(t, id.Index(0).IsSummary)
	assert.True(t, id.Index(1).IsSummary)
	assert.True(t, id.LastIndex().IsSummary)
}

func TestEntryIDWithLevel0Offset(t *testing.T) {
	id := RootEntryID().Child(2).Child(1)
	shifted := id.WithLevel0Offset(10)
	assert.EqualValues(t, 12, shifted.Index(0).Slot)
	assert.EqualValues(t, 1, shifted.Index(1).Slot)
}

func buildTestEntryInfo() EntryInfo {
	return EntryInfo{
		Kind:      EntryKindPanel,
		ShortName: "root",
		LongName:  "root",
		Slots: []EntryInfo{
			{
				Kind:      EntryKindPanel,
				ShortName: "n0",
				LongName:  "Node 0",
				Slots: []EntryInfo{
					{
						Kind:      EntryKindPanel,
						ShortName: "cpu",
						LongName:  "Node 0 CPU",
						Summary:   &EntryInfo{Kind: EntryKindSummary, Color: Color{R: 255}},
						Slots: []EntryInfo{
							{Kind: EntryKindSlot, ShortName: "c0", LongName: "Node 0 CPU 0", MaxRows: 4},
						},
					},
					{
						Kind:      EntryKindPanel,
						ShortName: "gpu",
						LongName:  "Node 0 GPU",
						Slots: []EntryInfo{
							{Kind: EntryKindSlot, ShortName: "g0", LongName: "Node 0 GPU 0", MaxRows: 2},
						},
					},
				},
			},
		},
	}
}

func TestEntryInfoGet(t *testing.T) {
	root := buildTestEntryInfo()
	node, err := (&root).Get(RootEntryID().Child(0))
	require.NoError(t, err)
	assert.Equal(t, "n0", node.ShortName)

	slot, err := (&root).Get(RootEntryID().Child(0).Child(0).Child(0))
	require.NoError(t, err)
	assert.Equal(t, EntryKindSlot, slot.Kind)
	assert.EqualValues(t, 4, slot.MaxRows)

	summary, err := (&root).Get(RootEntryID().Child(0).Child(0).Summary())
	require.NoError(t, err)
	assert.Equal(t, EntryKindSummary, summary.Kind)

	_, err = (&root).Get(RootEntryID().Child(9))
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestEntryInfoNodesAndKinds(t *testing.T) {
	root := buildTestEntryInfo()
	assert.Equal(t, 1, root.Nodes())
	assert.Equal(t, []string{"cpu", "gpu"}, root.Kinds())
}

func TestTileIDSlugRoundTrip(t *testing.T) {
	tile := TileID{Interval: NewInterval(100, 200)}
	assert.Equal(t, "100_200", tile.Slug())

	parsed, err := ParseTileID("100_200")
	require.NoError(t, err)
	assert.Equal(t, tile, parsed)

	_, err = ParseTileID("100")
	assert.ErrorIs(t, err, ErrTooFewValues)

	_, err = ParseTileID("100_200_300")
	assert.ErrorIs(t, err, ErrTooManyValues)
}
