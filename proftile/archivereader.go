package proftile

import (
	"context"
	"path"
)

// ArchiveReader is a synchronous DataSource backed by an archive directory
// written by ArchiveWriter. Every fetch is a lookup: it ignores `full` and
// returns whatever was archived.
type ArchiveReader struct {
	Bucket Bucket
	Root   string
}

// NewArchiveReader opens root through bucket, which must have been produced
// by Bucket-scoped key rooted the same way ArchiveWriter wrote it.
func NewArchiveReader(bucket Bucket, root string) *ArchiveReader {
	return &ArchiveReader{Bucket: bucket, Root: root}
}

func (r *ArchiveReader) key(parts ...string) string {
	return NormalizeKey(path.Join(append([]string{r.Root}, parts...)...))
}

func (r *ArchiveReader) readFrame(ctx context.Context, key string, v interface{}) error {
	rc, err := r.Bucket.NewReader(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()
	return ReadFrame(rc, v)
}

func (r *ArchiveReader) FetchDescription() DataSourceDescription {
	return DataSourceDescription{SourceLocator: []string{r.Root}}
}

func (r *ArchiveReader) FetchInfo() DataSourceInfo {
	var info DataSourceInfo
	info.FieldSchema = NewFieldSchema()
	if err := r.readFrame(context.Background(), r.key("info"), &info); err != nil {
		panic(err)
	}
	return info
}

func (r *ArchiveReader) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) (SummaryTile, error) {
	var data SummaryTileData
	if err := r.readFrame(context.Background(), r.key("summary_tile", entryID.Slug(), tileID.Slug()), &data); err != nil {
		return SummaryTile{}, err
	}
	return SummaryTile{EntryID: entryID, TileID: tileID, Data: data}, nil
}

func (r *ArchiveReader) FetchSlotTile(entryID EntryID, tileID TileID, full bool) (SlotTile, error) {
	var data SlotTileData
	if err := r.readFrame(context.Background(), r.key("slot_tile", entryID.Slug(), tileID.Slug()), &data); err != nil {
		return SlotTile{}, err
	}
	return SlotTile{EntryID: entryID, TileID: tileID, Data: data}, nil
}

func (r *ArchiveReader) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) (SlotMetaTile, error) {
	var data SlotMetaTileData
	if err := r.readFrame(context.Background(), r.key("slot_meta_tile", entryID.Slug(), tileID.Slug()), &data); err != nil {
		return SlotMetaTile{}, err
	}
	return SlotMetaTile{EntryID: entryID, TileID: tileID, Data: data}, nil
}
