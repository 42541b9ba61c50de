package proftile

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// ArchiveWriter drains a dynamic DataSource level-by-level and writes the
// result to a directory-of-compressed-tiles archive, building a TileSet
// pyramid as it goes. The per-level write pass (all writes at level N
// complete before level N+1 is requested) is built on
// golang.org/x/sync/errgroup.
type ArchiveWriter struct {
	Source       DeferredDataSource
	Bucket       Bucket
	Levels       uint32
	BranchFactor uint64
	Logger       *log.Logger
	Progress     bool
}

const maxUniqueDirAttempts = 100

// CreateUniqueDir creates dir, or if force is false and it already exists,
// retries with numeric suffixes ".1", ".2", ... up to maxUniqueDirAttempts.
func CreateUniqueDir(dir string, force bool) (string, error) {
	if force {
		if err := os.RemoveAll(dir); err != nil {
			return "", err
		}
		return dir, os.MkdirAll(dir, 0o755)
	}
	candidate := dir
	for attempt := 0; attempt < maxUniqueDirAttempts; attempt++ {
		if attempt > 0 {
			candidate = fmt.Sprintf("%s.%d", dir, attempt)
		}
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("could not create a unique directory for %q after %d attempts", dir, maxUniqueDirAttempts)
}

// walkEntryList performs the fixed DFS over an EntryInfo tree that the
// archive writer relies on: summary child first (if any),
// then each slot in order, flattening to the Summary/Slot leaf EntryIDs
// only (Panels are never directly archived).
func walkEntryList(entry EntryInfo, id EntryID, out *[]EntryID) {
	switch entry.Kind {
	case EntryKindPanel:
		if entry.Summary != nil {
			walkEntryList(*entry.Summary, id.Summary(), out)
		}
		for i, slot := range entry.Slots {
			walkEntryList(slot, id.Child(uint64(i)), out)
		}
	case EntryKindSlot, EntryKindSummary:
		*out = append(*out, id)
	}
}

// partitionLevel splits totalDuration into numTiles equal-width,
// integer-boundary tiles anchored at base.
func partitionLevel(base Timestamp, totalDuration int64, numTiles uint64) []TileID {
	tiles := make([]TileID, numTiles)
	for i := uint64(0); i < numTiles; i++ {
		start := base + Timestamp(int64(i)*totalDuration/int64(numTiles))
		stop := base + Timestamp(int64(i+1)*totalDuration/int64(numTiles))
		tiles[i] = TileID{Interval: NewInterval(start, stop)}
	}
	return tiles
}

// Write runs the full archive algorithm, writing into outDir (created via
// CreateUniqueDir; with force set, an existing outDir is replaced instead of
// a suffixed name being chosen) and returning the directory actually used.
func (w *ArchiveWriter) Write(ctx context.Context, outDir string, force bool) (string, error) {
	if w.Levels < 1 {
		panic("ArchiveWriter: Levels must be >= 1")
	}
	if w.BranchFactor < 2 {
		panic("ArchiveWriter: BranchFactor must be >= 2")
	}

	root, err := CreateUniqueDir(outDir, force)
	if err != nil {
		return "", err
	}
	if w.Logger != nil {
		w.Logger.Printf("writing archive to %s", root)
	}

	for _, sub := range []string{"summary_tile", "slot_tile", "slot_meta_tile"} {
		if err := os.MkdirAll(path.Join(root, sub), 0o755); err != nil {
			return "", err
		}
	}

	counting := NewCountingDeferredDataSource(w.Source)
	counting.FetchInfo()
	var info DataSourceInfo
	for {
		infos := counting.GetInfos()
		if len(infos) > 0 {
			info = infos[0]
			break
		}
	}
	if len(info.TileSet.Levels) != 0 {
		panic("ArchiveWriter: source is not archivable, it already has a TileSet")
	}

	entryIDs := make([]EntryID, 0)
	walkEntryList(info.EntryInfo, RootEntryID(), &entryIDs)

	for _, id := range entryIDs {
		slug := id.Slug()
		var dirs []string
		if entryKindAt(info.EntryInfo, id) == EntryKindSummary {
			dirs = []string{"summary_tile"}
		} else {
			dirs = []string{"slot_tile", "slot_meta_tile"}
		}
		for _, d := range dirs {
			if err := os.MkdirAll(path.Join(root, d, slug), 0o755); err != nil {
				return "", err
			}
		}
	}

	var tileSet TileSet
	var bar *progressbar.ProgressBar
	if w.Progress {
		bar = progressbar.Default(int64(w.Levels), "writing pyramid")
	}

	var bytesWritten uint64
	var mu sync.Mutex
	seenHashes := roaring.New()

	for level := uint32(0); level < w.Levels; level++ {
		numTiles := pow(w.BranchFactor, level)
		tiles := partitionLevel(info.Interval.Start, info.Interval.DurationNs(), numTiles)
		full := level == w.Levels-1

		for _, id := range entryIDs {
			kind := entryKindAt(info.EntryInfo, id)
			for _, tile := range tiles {
				switch kind {
				case EntryKindSummary:
					counting.FetchSummaryTile(id, tile, full)
				case EntryKindSlot:
					counting.FetchSlotTile(id, tile, full)
					counting.FetchSlotMetaTile(id, tile, full)
				}
			}
		}

		eg, egCtx := errgroup.WithContext(ctx)
		for counting.OutstandingRequests() > 0 {
			for _, t := range counting.GetSummaryTiles() {
				t := t
				eg.Go(func() error {
					return writeTileFrame(egCtx, w.Bucket, root, "summary_tile", t.EntryID, t.TileID, t.Data, &mu, &bytesWritten, seenHashes)
				})
			}
			for _, t := range counting.GetSlotTiles() {
				t := t
				eg.Go(func() error {
					return writeTileFrame(egCtx, w.Bucket, root, "slot_tile", t.EntryID, t.TileID, t.Data, &mu, &bytesWritten, seenHashes)
				})
			}
			for _, t := range counting.GetSlotMetaTiles() {
				t := t
				eg.Go(func() error {
					return writeTileFrame(egCtx, w.Bucket, root, "slot_meta_tile", t.EntryID, t.TileID, t.Data, &mu, &bytesWritten, seenHashes)
				})
			}
		}
		if err := eg.Wait(); err != nil {
			return "", err
		}

		tileSet.Levels = append(tileSet.Levels, tiles)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	info.TileSet = tileSet
	if err := writeInfoFile(ctx, w.Bucket, root, info); err != nil {
		return "", err
	}

	if w.Logger != nil {
		w.Logger.Printf("wrote %s across %d entries", humanize.Bytes(bytesWritten), len(entryIDs))
	}
	return root, nil
}

func pow(base uint64, exp uint32) uint64 {
	result := uint64(1)
	for i := uint32(0); i < exp; i++ {
		result *= base
	}
	return result
}

func entryKindAt(root EntryInfo, id EntryID) EntryKind {
	node, err := (&root).Get(id)
	if err != nil {
		panic(err)
	}
	return node.Kind
}

func writeTileFrame(ctx context.Context, bucket Bucket, root, kind string, entryID EntryID, tileID TileID, data interface{}, mu *sync.Mutex, bytesWritten *uint64, seenHashes *roaring.Bitmap) error {
	frame, err := EncodeFrame(data)
	if err != nil {
		return err
	}

	key := path.Join(kind, entryID.Slug(), tileID.Slug())
	wc, err := bucket.NewWriter(ctx, NormalizeKey(path.Join(root, key)))
	if err != nil {
		return err
	}
	if _, err := wc.Write(frame); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}

	h := xxhash.Sum64(frame)
	mu.Lock()
	seenHashes.Add(uint32(h))
	*bytesWritten += uint64(len(frame))
	mu.Unlock()
	return nil
}

func writeInfoFile(ctx context.Context, bucket Bucket, root string, info DataSourceInfo) error {
	frame, err := EncodeFrame(info)
	if err != nil {
		return err
	}
	wc, err := bucket.NewWriter(ctx, NormalizeKey(path.Join(root, "info")))
	if err != nil {
		return err
	}
	if _, err := wc.Write(frame); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
