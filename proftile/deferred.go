package proftile

import "sync"

// DeferredDataSource is the asynchronous façade every adapter (parallel,
// merge, HTTP client, inline wrapper) presents to the viewer core: fetches
// enqueue work and return immediately; get_* drains whatever has completed
// so far, possibly nothing. No ordering between a fetch and its result is
// promised beyond the (entry, tile) pair each result self-identifies with.
type DeferredDataSource interface {
	FetchDescription() DataSourceDescription

	FetchInfo()
	GetInfos() []DataSourceInfo

	FetchSummaryTile(entryID EntryID, tileID TileID, full bool)
	GetSummaryTiles() []SummaryTile

	FetchSlotTile(entryID EntryID, tileID TileID, full bool)
	GetSlotTiles() []SlotTile

	FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool)
	GetSlotMetaTiles() []SlotMetaTile
}

// DeferredDataSourceWrapper adapts a synchronous DataSourceMut into a
// DeferredDataSource by performing each fetch inline, on the caller's
// goroutine, and buffering the result for the next Get call. It is not
// thread-safe; it exists to let a single-threaded synchronous source (like
// the in-process generator or the file reader) speak the deferred protocol
// without real concurrency.
type DeferredDataSourceWrapper struct {
	src DataSourceMut

	infos         []DataSourceInfo
	summaryTiles  []SummaryTile
	slotTiles     []SlotTile
	slotMetaTiles []SlotMetaTile
}

// NewDeferredDataSourceWrapper wraps src.
func NewDeferredDataSourceWrapper(src DataSourceMut) *DeferredDataSourceWrapper {
	return &DeferredDataSourceWrapper{src: src}
}

func (w *DeferredDataSourceWrapper) FetchDescription() DataSourceDescription {
	return w.src.FetchDescription()
}

func (w *DeferredDataSourceWrapper) FetchInfo() {
	w.infos = append(w.infos, w.src.FetchInfo())
}

func (w *DeferredDataSourceWrapper) GetInfos() []DataSourceInfo {
	result := w.infos
	w.infos = nil
	return result
}

func (w *DeferredDataSourceWrapper) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) {
	tile, err := w.src.FetchSummaryTile(entryID, tileID, full)
	if err != nil {
		panic(err)
	}
	w.summaryTiles = append(w.summaryTiles, tile)
}

func (w *DeferredDataSourceWrapper) GetSummaryTiles() []SummaryTile {
	result := w.summaryTiles
	w.summaryTiles = nil
	return result
}

func (w *DeferredDataSourceWrapper) FetchSlotTile(entryID EntryID, tileID TileID, full bool) {
	tile, err := w.src.FetchSlotTile(entryID, tileID, full)
	if err != nil {
		panic(err)
	}
	w.slotTiles = append(w.slotTiles, tile)
}

func (w *DeferredDataSourceWrapper) GetSlotTiles() []SlotTile {
	result := w.slotTiles
	w.slotTiles = nil
	return result
}

func (w *DeferredDataSourceWrapper) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) {
	tile, err := w.src.FetchSlotMetaTile(entryID, tileID, full)
	if err != nil {
		panic(err)
	}
	w.slotMetaTiles = append(w.slotMetaTiles, tile)
}

func (w *DeferredDataSourceWrapper) GetSlotMetaTiles() []SlotMetaTile {
	result := w.slotMetaTiles
	w.slotMetaTiles = nil
	return result
}

// CountingDeferredDataSource wraps any DeferredDataSource and tracks
// OutstandingRequests = submitted fetches - returned results. The invariant
// outstanding >= 0 is enforced with a panic, matching an upstream
// programming error (more results drained than were ever submitted).
type CountingDeferredDataSource struct {
	mu          sync.Mutex
	inner       DeferredDataSource
	outstanding int64
}

// NewCountingDeferredDataSource wraps inner.
func NewCountingDeferredDataSource(inner DeferredDataSource) *CountingDeferredDataSource {
	return &CountingDeferredDataSource{inner: inner}
}

// OutstandingRequests returns the current number of submitted-but-undrained
// fetches.
func (c *CountingDeferredDataSource) OutstandingRequests() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outstanding
}

func (c *CountingDeferredDataSource) startRequest() {
	c.mu.Lock()
	c.outstanding++
	c.mu.Unlock()
}

func (c *CountingDeferredDataSource) finishRequest(count int64) {
	if count == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outstanding < count {
		panic("CountingDeferredDataSource: more results returned than requests outstanding")
	}
	c.outstanding -= count
}

func (c *CountingDeferredDataSource) FetchDescription() DataSourceDescription {
	return c.inner.FetchDescription()
}

func (c *CountingDeferredDataSource) FetchInfo() {
	c.startRequest()
	c.inner.FetchInfo()
}

func (c *CountingDeferredDataSource) GetInfos() []DataSourceInfo {
	result := c.inner.GetInfos()
	c.finishRequest(int64(len(result)))
	return result
}

func (c *CountingDeferredDataSource) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) {
	c.startRequest()
	c.inner.FetchSummaryTile(entryID, tileID, full)
}

func (c *CountingDeferredDataSource) GetSummaryTiles() []SummaryTile {
	result := c.inner.GetSummaryTiles()
	c.finishRequest(int64(len(result)))
	return result
}

func (c *CountingDeferredDataSource) FetchSlotTile(entryID EntryID, tileID TileID, full bool) {
	c.startRequest()
	c.inner.FetchSlotTile(entryID, tileID, full)
}

func (c *CountingDeferredDataSource) GetSlotTiles() []SlotTile {
	result := c.inner.GetSlotTiles()
	c.finishRequest(int64(len(result)))
	return result
}

func (c *CountingDeferredDataSource) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) {
	c.startRequest()
	c.inner.FetchSlotMetaTile(entryID, tileID, full)
}

func (c *CountingDeferredDataSource) GetSlotMetaTiles() []SlotMetaTile {
	result := c.inner.GetSlotMetaTiles()
	c.finishRequest(int64(len(result)))
	return result
}

// BlockingDataSource presents any DeferredDataSource as a synchronous
// DataSourceMut by submitting a fetch and spin-polling Get* until the
// matching result appears, the same wait-for-drain idiom ArchiveWriter uses
// around its own counting source. Intended for callers (like a merge-serve
// CLI command) that need a DataSourceMut-shaped handle over a source that
// only speaks the deferred protocol (e.g. MergeDeferredDataSource), not for
// latency-sensitive paths.
type BlockingDataSource struct {
	inner DeferredDataSource
}

// NewBlockingDataSource wraps inner.
func NewBlockingDataSource(inner DeferredDataSource) *BlockingDataSource {
	return &BlockingDataSource{inner: inner}
}

func (b *BlockingDataSource) FetchDescription() DataSourceDescription {
	return b.inner.FetchDescription()
}

func (b *BlockingDataSource) FetchInfo() DataSourceInfo {
	b.inner.FetchInfo()
	for {
		if results := b.inner.GetInfos(); len(results) > 0 {
			return results[0]
		}
	}
}

func (b *BlockingDataSource) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) (SummaryTile, error) {
	b.inner.FetchSummaryTile(entryID, tileID, full)
	for {
		if results := b.inner.GetSummaryTiles(); len(results) > 0 {
			return results[0], nil
		}
	}
}

func (b *BlockingDataSource) FetchSlotTile(entryID EntryID, tileID TileID, full bool) (SlotTile, error) {
	b.inner.FetchSlotTile(entryID, tileID, full)
	for {
		if results := b.inner.GetSlotTiles(); len(results) > 0 {
			return results[0], nil
		}
	}
}

func (b *BlockingDataSource) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) (SlotMetaTile, error) {
	b.inner.FetchSlotMetaTile(entryID, tileID, full)
	for {
		if results := b.inner.GetSlotMetaTiles(); len(results) > 0 {
			return results[0], nil
		}
	}
}
