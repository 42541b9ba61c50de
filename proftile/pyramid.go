package proftile

import "sync"

// PyramidSelector picks which tiles to request for a viewport interval,
// given a DataSourceInfo's TileSet. Dynamic sources (empty TileSet) always
// get a single tile spanning the intersection of the viewport with the
// source's total interval. Static sources pick the pyramid level whose
// tile duration is closest to the viewport's visible duration, then return
// every tile at that level overlapping the viewport.
//
// The scoring algorithm below picks the pyramid level whose tile duration
// is closest to the viewport's visible duration.
type PyramidSelector struct {
	mu                  sync.Mutex
	lastRequestInterval Interval
	lastResult          []TileID
	haveLast            bool
}

// RequestTiles returns the tiles to fetch for viewport against info.
func (p *PyramidSelector) RequestTiles(info DataSourceInfo, viewport Interval) []TileID {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.haveLast && p.lastRequestInterval == viewport {
		return p.lastResult
	}

	var result []TileID
	if len(info.TileSet.Levels) == 0 {
		result = []TileID{{Interval: viewport.Intersection(info.Interval)}}
	} else {
		visible := viewport.Intersection(info.Interval)
		r := visible.DurationNs()
		best := 0
		bestScore := int64(-1)
		for level, tiles := range info.TileSet.Levels {
			if len(tiles) == 0 {
				continue
			}
			d := tiles[0].Interval.DurationNs()
			var score int64
			switch {
			case d == 0 || r == 0:
				score = 1<<62
			case d <= r:
				score = r / d
			default:
				score = d / r
			}
			if bestScore < 0 || score < bestScore {
				bestScore = score
				best = level
			}
		}
		for _, tile := range info.TileSet.Levels[best] {
			if tile.Interval.Overlaps(viewport) {
				result = append(result, tile)
			}
		}
	}

	p.lastRequestInterval = viewport
	p.lastResult = result
	p.haveLast = true
	return result
}
