package proftile

import "sort"

// MergeDeferredDataSource overlays N sibling DeferredDataSources into one
// logical profile, concatenating their level-0 entries and remapping
// EntryIDs/ItemUIDs between the merged space and each child's own space.
type MergeDeferredDataSource struct {
	sources []DeferredDataSource

	// infoQueues[i] buffers DataSourceInfo rounds received from sources[i]
	// that haven't yet been paired up with a round from every other child.
	infoQueues [][]DataSourceInfo

	// mapping[k] is the level-0 offset added to source k's EntryIDs to
	// place them in the merged space; recomputed each time a new round of
	// infos arrives, keyed on that round's per-child slot counts.
	mapping []uint64
}

// NewMergeDeferredDataSource overlays sources in order; order determines
// both EntryID offset assignment and the effective display order of
// concatenated level-0 slots.
func NewMergeDeferredDataSource(sources []DeferredDataSource) *MergeDeferredDataSource {
	return &MergeDeferredDataSource{
		sources:    sources,
		infoQueues: make([][]DataSourceInfo, len(sources)),
	}
}

func (m *MergeDeferredDataSource) FetchDescription() DataSourceDescription {
	var locators []string
	for _, src := range m.sources {
		locators = append(locators, src.FetchDescription().SourceLocator...)
	}
	return DataSourceDescription{SourceLocator: locators}
}

func mergeEntry(first, second EntryInfo) EntryInfo {
	if first.Kind != EntryKindPanel || second.Kind != EntryKindPanel {
		panic("mergeEntry requires both entries to be panels")
	}
	if first.Summary != nil || second.Summary != nil {
		panic("mergeEntry requires both root panels to have no summary")
	}
	merged := first
	merged.Slots = append(append([]EntryInfo{}, first.Slots...), second.Slots...)
	return merged
}

// computeMapping builds the level-0 offset table from one round of
// per-child DataSourceInfo, in the same order used by mergeInfos.
func computeMapping(sourceInfos []DataSourceInfo) []uint64 {
	mapping := make([]uint64, len(sourceInfos))
	var offset uint64
	for i, info := range sourceInfos {
		mapping[i] = offset
		offset += uint64(len(info.EntryInfo.Slots))
	}
	return mapping
}

// mergeInfos combines one round of per-child DataSourceInfo into the merged
// DataSourceInfo. Panics (a fatal structural mismatch) if the children
// disagree on tile_set or field_schema.
func mergeInfos(sourceInfos []DataSourceInfo) DataSourceInfo {
	if len(sourceInfos) == 0 {
		panic("mergeInfos requires at least one source")
	}
	first := sourceInfos[0]
	merged := first
	for _, info := range sourceInfos[1:] {
		if !tileSetsEqual(info.TileSet, first.TileSet) {
			panic(ErrTileSetMismatch)
		}
		if !info.FieldSchema.Equal(first.FieldSchema) {
			panic(ErrFieldSchemaMismatch)
		}
		merged.Interval = merged.Interval.Union(info.Interval)
		merged.EntryInfo = mergeEntry(merged.EntryInfo, info.EntryInfo)
	}
	return merged
}

func tileSetsEqual(a, b TileSet) bool {
	if len(a.Levels) != len(b.Levels) {
		return false
	}
	for i := range a.Levels {
		if len(a.Levels[i]) != len(b.Levels[i]) {
			return false
		}
		for j := range a.Levels[i] {
			if a.Levels[i][j] != b.Levels[i][j] {
				return false
			}
		}
	}
	return true
}

// mapSrcToDstEntry shifts a child's EntryID into the merged space.
func mapSrcToDstEntry(mapping []uint64, idx int, src EntryID) EntryID {
	return src.WithLevel0Offset(int64(mapping[idx]))
}

// mapDstToSrcEntry finds which child a merged-space EntryID belongs to and
// returns that child's index plus the EntryID in its own space.
func mapDstToSrcEntry(mapping []uint64, dst EntryID) (int, EntryID) {
	idx0 := dst.Index(0)
	if idx0.IsSummary {
		panic("mapDstToSrcEntry: level-0 path element must be a slot index")
	}
	level0 := idx0.Slot
	idx := sort.Search(len(mapping), func(i int) bool {
		return mapping[i] > level0
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return idx, dst.WithLevel0Offset(-int64(mapping[idx]))
}

// mapSrcToDstItemUID combines a child index and its own ItemUID into a
// merged-space ItemUID: dst = src*N + idx.
func mapSrcToDstItemUID(numSources int, idx int, uid ItemUID) ItemUID {
	return ItemUID(uint64(uid)*uint64(numSources) + uint64(idx))
}

func (m *MergeDeferredDataSource) FetchInfo() {
	for _, src := range m.sources {
		src.FetchInfo()
	}
}

func (m *MergeDeferredDataSource) GetInfos() []DataSourceInfo {
	for i, src := range m.sources {
		m.infoQueues[i] = append(m.infoQueues[i], src.GetInfos()...)
	}
	maxAvailable := 0
	for _, q := range m.infoQueues {
		if len(q) > maxAvailable {
			maxAvailable = len(q)
		}
	}
	minAvailable := maxAvailable
	for _, q := range m.infoQueues {
		if len(q) < minAvailable {
			minAvailable = len(q)
		}
	}
	if minAvailable == 0 {
		return nil
	}

	var result []DataSourceInfo
	for round := 0; round < minAvailable; round++ {
		sourceInfos := make([]DataSourceInfo, len(m.sources))
		for i := range m.sources {
			sourceInfos[i] = m.infoQueues[i][0]
			m.infoQueues[i] = m.infoQueues[i][1:]
		}
		m.mapping = computeMapping(sourceInfos)
		result = append(result, mergeInfos(sourceInfos))
	}
	return result
}

func (m *MergeDeferredDataSource) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) {
	idx, srcEntry := mapDstToSrcEntry(m.mapping, entryID)
	m.sources[idx].FetchSummaryTile(srcEntry, tileID, full)
}

func (m *MergeDeferredDataSource) GetSummaryTiles() []SummaryTile {
	var result []SummaryTile
	for idx, src := range m.sources {
		for _, tile := range src.GetSummaryTiles() {
			tile.EntryID = mapSrcToDstEntry(m.mapping, idx, tile.EntryID)
			result = append(result, tile)
		}
	}
	return result
}

func (m *MergeDeferredDataSource) FetchSlotTile(entryID EntryID, tileID TileID, full bool) {
	idx, srcEntry := mapDstToSrcEntry(m.mapping, entryID)
	m.sources[idx].FetchSlotTile(srcEntry, tileID, full)
}

func (m *MergeDeferredDataSource) GetSlotTiles() []SlotTile {
	var result []SlotTile
	n := len(m.sources)
	for idx, src := range m.sources {
		for _, tile := range src.GetSlotTiles() {
			tile.EntryID = mapSrcToDstEntry(m.mapping, idx, tile.EntryID)
			for r, row := range tile.Data.Items {
				for c, item := range row {
					tile.Data.Items[r][c].ItemUID = mapSrcToDstItemUID(n, idx, item.ItemUID)
				}
			}
			result = append(result, tile)
		}
	}
	return result
}

func (m *MergeDeferredDataSource) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) {
	idx, srcEntry := mapDstToSrcEntry(m.mapping, entryID)
	m.sources[idx].FetchSlotMetaTile(srcEntry, tileID, full)
}

func (m *MergeDeferredDataSource) GetSlotMetaTiles() []SlotMetaTile {
	var result []SlotMetaTile
	n := len(m.sources)
	for idx, src := range m.sources {
		for _, tile := range src.GetSlotMetaTiles() {
			tile.EntryID = mapSrcToDstEntry(m.mapping, idx, tile.EntryID)
			for r, row := range tile.Data.Items {
				for c, meta := range row {
					meta.ItemUID = mapSrcToDstItemUID(n, idx, meta.ItemUID)
					for f, fv := range meta.Fields {
						meta.Fields[f].Value = mapItemLinks(fv.Value, func(link ItemLink) ItemLink {
							link.ItemUID = mapSrcToDstItemUID(n, idx, link.ItemUID)
							link.EntryID = mapSrcToDstEntry(m.mapping, idx, link.EntryID)
							return link
						})
					}
					tile.Data.Items[r][c] = meta
				}
			}
			result = append(result, tile)
		}
	}
	return result
}
