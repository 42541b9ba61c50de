package proftile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveWriterReaderRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	defer os.Chdir(orig)

	ctx := context.Background()
	bucket, err := OpenBucket(ctx, ".")
	require.NoError(t, err)
	defer bucket.Close()

	gen := NewGenerator(GeneratorConfig{Seed: 1, Nodes: 1, Procs: 1, Kinds: []string{"CPU"}})
	writer := &ArchiveWriter{
		Source:       NewDeferredDataSourceWrapper(gen),
		Bucket:       bucket,
		Levels:       2,
		BranchFactor: 2,
	}
	root, err := writer.Write(ctx, "archive", true)
	require.NoError(t, err)
	assert.Equal(t, "archive", root)

	reader := NewArchiveReader(bucket, root)
	info := reader.FetchInfo()
	assert.Equal(t, 1, info.EntryInfo.Nodes())
	assert.Equal(t, []string{"cpu"}, info.EntryInfo.Kinds())
	require.Len(t, info.TileSet.Levels, 2)
	assert.Len(t, info.TileSet.Levels[0], 1)
	assert.Len(t, info.TileSet.Levels[1], 2)

	summaryID := RootEntryID().Child(0).Child(0).Summary()
	tile0 := info.TileSet.Levels[0][0]
	summaryTile, err := reader.FetchSummaryTile(summaryID, tile0, true)
	require.NoError(t, err)
	assert.Equal(t, summaryID, summaryTile.EntryID)
	assert.NotEmpty(t, summaryTile.Data.Utilization)

	slotID := RootEntryID().Child(0).Child(0).Child(0)
	slotTile, err := reader.FetchSlotTile(slotID, tile0, true)
	require.NoError(t, err)
	assert.Equal(t, slotID, slotTile.EntryID)

	metaTile, err := reader.FetchSlotMetaTile(slotID, tile0, true)
	require.NoError(t, err)
	assert.Equal(t, len(slotTile.Data.Items), len(metaTile.Data.Items))
}
