package proftile

// DataSource is a synchronous source of profile data. Implementations may
// assume single-threaded, serialized access to their mutable state; see
// DataSourceMut for sources that maintain an internal cache.
type DataSource interface {
	FetchDescription() DataSourceDescription
	FetchInfo() DataSourceInfo
	FetchSummaryTile(entryID EntryID, tileID TileID, full bool) (SummaryTile, error)
	FetchSlotTile(entryID EntryID, tileID TileID, full bool) (SlotTile, error)
	FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) (SlotMetaTile, error)
}

// DataSourceMut is the mutable-receiver counterpart of DataSource, used by
// sources (like the in-process generator) that populate caches lazily on
// first fetch. Any DataSource can be adapted into a DataSourceMut via
// AsDataSourceMut, since a read-only source trivially tolerates a pointer
// receiver.
type DataSourceMut interface {
	FetchDescription() DataSourceDescription
	FetchInfo() DataSourceInfo
	FetchSummaryTile(entryID EntryID, tileID TileID, full bool) (SummaryTile, error)
	FetchSlotTile(entryID EntryID, tileID TileID, full bool) (SlotTile, error)
	FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) (SlotMetaTile, error)
}

// dataSourceMutAdapter forwards DataSourceMut calls to an underlying
// DataSource, letting any stateless DataSource satisfy DataSourceMut.
type dataSourceMutAdapter struct {
	DataSource
}

// AsDataSourceMut adapts src for use where a DataSourceMut is required.
func AsDataSourceMut(src DataSource) DataSourceMut {
	return dataSourceMutAdapter{DataSource: src}
}
