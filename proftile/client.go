package proftile

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// HTTPClientDataSource implements DeferredDataSource against a Server: each
// fetch issues a GET on a bounded worker pool and buffers the decoded result
// rather than blocking the caller.
type HTTPClientDataSource struct {
	BaseURL string
	Client  *http.Client

	eg *errgroup.Group

	mu            sync.Mutex
	infos         []DataSourceInfo
	summaryTiles  []SummaryTile
	slotTiles     []SlotTile
	slotMetaTiles []SlotMetaTile
}

// NewHTTPClientDataSource points at a running Server's baseURL, bounding
// concurrent in-flight requests to maxWorkers (0 means unbounded).
func NewHTTPClientDataSource(baseURL string, maxWorkers int) *HTTPClientDataSource {
	eg, _ := errgroup.WithContext(context.Background())
	if maxWorkers > 0 {
		eg.SetLimit(maxWorkers)
	}
	return &HTTPClientDataSource{
		BaseURL: baseURL,
		Client:  http.DefaultClient,
		eg:      eg,
	}
}

func (c *HTTPClientDataSource) FetchDescription() DataSourceDescription {
	return DataSourceDescription{SourceLocator: []string{c.BaseURL}}
}

func (c *HTTPClientDataSource) fetchAndDecode(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "*/*")
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proftiles: GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return ReadFrame(resp.Body, v)
}

func (c *HTTPClientDataSource) FetchInfo() {
	c.eg.Go(func() error {
		var info DataSourceInfo
		info.FieldSchema = NewFieldSchema()
		if err := c.fetchAndDecode(context.Background(), "/info", &info); err != nil {
			return err
		}
		c.mu.Lock()
		c.infos = append(c.infos, info)
		c.mu.Unlock()
		return nil
	})
}

func (c *HTTPClientDataSource) GetInfos() []DataSourceInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.infos
	c.infos = nil
	return result
}

func (c *HTTPClientDataSource) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) {
	key := TileKey{EntryID: entryID, TileID: tileID}
	c.eg.Go(func() error {
		var data SummaryTileData
		path := "/summary_tile/" + key.Slug() + fullQuery(full)
		if err := c.fetchAndDecode(context.Background(), path, &data); err != nil {
			return err
		}
		c.mu.Lock()
		c.summaryTiles = append(c.summaryTiles, SummaryTile{EntryID: entryID, TileID: tileID, Data: data})
		c.mu.Unlock()
		return nil
	})
}

func (c *HTTPClientDataSource) GetSummaryTiles() []SummaryTile {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.summaryTiles
	c.summaryTiles = nil
	return result
}

func (c *HTTPClientDataSource) FetchSlotTile(entryID EntryID, tileID TileID, full bool) {
	key := TileKey{EntryID: entryID, TileID: tileID}
	c.eg.Go(func() error {
		var data SlotTileData
		path := "/slot_tile/" + key.Slug() + fullQuery(full)
		if err := c.fetchAndDecode(context.Background(), path, &data); err != nil {
			return err
		}
		c.mu.Lock()
		c.slotTiles = append(c.slotTiles, SlotTile{EntryID: entryID, TileID: tileID, Data: data})
		c.mu.Unlock()
		return nil
	})
}

func (c *HTTPClientDataSource) GetSlotTiles() []SlotTile {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.slotTiles
	c.slotTiles = nil
	return result
}

func (c *HTTPClientDataSource) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) {
	key := TileKey{EntryID: entryID, TileID: tileID}
	c.eg.Go(func() error {
		var data SlotMetaTileData
		path := "/slot_meta_tile/" + key.Slug() + fullQuery(full)
		if err := c.fetchAndDecode(context.Background(), path, &data); err != nil {
			return err
		}
		c.mu.Lock()
		c.slotMetaTiles = append(c.slotMetaTiles, SlotMetaTile{EntryID: entryID, TileID: tileID, Data: data})
		c.mu.Unlock()
		return nil
	})
}

func (c *HTTPClientDataSource) GetSlotMetaTiles() []SlotMetaTile {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := c.slotMetaTiles
	c.slotMetaTiles = nil
	return result
}

// Wait blocks until all in-flight requests have completed; not part of the
// DeferredDataSource contract, used by tests to avoid polling Get* in a
// spin loop.
func (c *HTTPClientDataSource) Wait() error {
	return c.eg.Wait()
}

func fullQuery(full bool) string {
	if full {
		return "?full=true"
	}
	return ""
}
