package proftile

import (
	"fmt"
	"strconv"
	"strings"
)

// TileID is an interval of time addressed at a particular pyramid level.
type TileID struct {
	Interval Interval
}

// Slug returns the canonical encoding "<startNs>_<stopNs>".
func (t TileID) Slug() string {
	return fmt.Sprintf("%d_%d", int64(t.Interval.Start), int64(t.Interval.Stop))
}

// ParseTileID decodes a slug produced by Slug.
func ParseTileID(s string) (TileID, error) {
	parts := strings.Split(s, "_")
	if len(parts) < 2 {
		return TileID{}, ErrTooFewValues
	}
	if len(parts) > 2 {
		return TileID{}, ErrTooManyValues
	}
	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return TileID{}, fmt.Errorf("%w: %v", ErrInvalidSlug, err)
	}
	stop, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return TileID{}, fmt.Errorf("%w: %v", ErrInvalidSlug, err)
	}
	return TileID{Interval: NewInterval(Timestamp(start), Timestamp(stop))}, nil
}

// TileSet is the pyramid of precomputed tile boundaries for a static
// DataSource, outermost level first. An empty TileSet marks a dynamic
// source, which the pyramid selector always queries with a single
// intersected tile.
type TileSet struct {
	Levels [][]TileID
}

// TileKey names an (entry, tile) pair, the unit addressed by every tile
// fetch, archive path, and HTTP route.
type TileKey struct {
	EntryID EntryID
	TileID  TileID
}

// Slug returns the two-segment path "<entry_slug>/<tile_slug>". The HTTP
// client builds its request paths with it; the archive writer/reader and the
// HTTP server join or split the same two slugs themselves.
func (k TileKey) Slug() string {
	return k.EntryID.Slug() + "/" + k.TileID.Slug()
}

// UtilPoint is one sample of a summary utilization curve.
type UtilPoint struct {
	Time Timestamp
	Util float32
}

// SummaryTileData holds a summary panel's utilization curve within one tile.
type SummaryTileData struct {
	Utilization []UtilPoint
}

// SlotTileData holds the lightweight Items for a slot within one tile,
// organized by row.
type SlotTileData struct {
	Items [][]Item
}

// SlotMetaTileData mirrors SlotTileData row-for-row with full ItemMeta.
type SlotMetaTileData struct {
	Items [][]ItemMeta
}

// SummaryTile is a fetched, self-identifying summary result.
type SummaryTile struct {
	EntryID EntryID
	TileID  TileID
	Data    SummaryTileData
}

// SlotTile is a fetched, self-identifying slot result.
type SlotTile struct {
	EntryID EntryID
	TileID  TileID
	Data    SlotTileData
}

// SlotMetaTile is a fetched, self-identifying slot-metadata result.
type SlotMetaTile struct {
	EntryID EntryID
	TileID  TileID
	Data    SlotMetaTileData
}

// DataSourceDescription identifies where a DataSource's data comes from, for
// display purposes.
type DataSourceDescription struct {
	SourceLocator []string
}

// DataSourceInfo is the static description of a DataSource's contents,
// returned by fetch_info and shared (unmodified) across all its tiles.
type DataSourceInfo struct {
	EntryInfo   EntryInfo
	Interval    Interval
	TileSet     TileSet
	FieldSchema *FieldSchema
}
