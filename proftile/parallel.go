package proftile

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelDeferredDataSource adapts a thread-safe, read-only DataSource into
// a DeferredDataSource by running each fetch on a bounded worker pool and
// buffering results under a mutex, bounding fan-out with
// golang.org/x/sync/errgroup.
type ParallelDeferredDataSource struct {
	src DataSource
	eg  *errgroup.Group

	mu            sync.Mutex
	infos         []DataSourceInfo
	summaryTiles  []SummaryTile
	slotTiles     []SlotTile
	slotMetaTiles []SlotMetaTile
}

// NewParallelDeferredDataSource wraps src, bounding concurrent fetches to
// maxWorkers (0 means unbounded).
func NewParallelDeferredDataSource(src DataSource, maxWorkers int) *ParallelDeferredDataSource {
	eg, _ := errgroup.WithContext(context.Background())
	if maxWorkers > 0 {
		eg.SetLimit(maxWorkers)
	}
	return &ParallelDeferredDataSource{src: src, eg: eg}
}

func (p *ParallelDeferredDataSource) FetchDescription() DataSourceDescription {
	return p.src.FetchDescription()
}

func (p *ParallelDeferredDataSource) FetchInfo() {
	p.eg.Go(func() error {
		info := p.src.FetchInfo()
		p.mu.Lock()
		p.infos = append(p.infos, info)
		p.mu.Unlock()
		return nil
	})
}

func (p *ParallelDeferredDataSource) GetInfos() []DataSourceInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := p.infos
	p.infos = nil
	return result
}

func (p *ParallelDeferredDataSource) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) {
	p.eg.Go(func() error {
		tile, err := p.src.FetchSummaryTile(entryID, tileID, full)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.summaryTiles = append(p.summaryTiles, tile)
		p.mu.Unlock()
		return nil
	})
}

func (p *ParallelDeferredDataSource) GetSummaryTiles() []SummaryTile {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := p.summaryTiles
	p.summaryTiles = nil
	return result
}

func (p *ParallelDeferredDataSource) FetchSlotTile(entryID EntryID, tileID TileID, full bool) {
	p.eg.Go(func() error {
		tile, err := p.src.FetchSlotTile(entryID, tileID, full)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.slotTiles = append(p.slotTiles, tile)
		p.mu.Unlock()
		return nil
	})
}

func (p *ParallelDeferredDataSource) GetSlotTiles() []SlotTile {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := p.slotTiles
	p.slotTiles = nil
	return result
}

func (p *ParallelDeferredDataSource) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) {
	p.eg.Go(func() error {
		tile, err := p.src.FetchSlotMetaTile(entryID, tileID, full)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.slotMetaTiles = append(p.slotMetaTiles, tile)
		p.mu.Unlock()
		return nil
	})
}

func (p *ParallelDeferredDataSource) GetSlotMetaTiles() []SlotMetaTile {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := p.slotMetaTiles
	p.slotMetaTiles = nil
	return result
}

// Wait blocks until all fetches submitted so far have completed. Not part
// of the DeferredDataSource contract (a real viewer never calls it); tests
// use it to deterministically drain the pool instead of polling Get* in a
// spin loop.
func (p *ParallelDeferredDataSource) Wait() error {
	return p.eg.Wait()
}
