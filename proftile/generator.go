package proftile

import "math/rand"

// GeneratorConfig controls the shape of synthetic data produced by
// Generator (7 kinds, 8 procs per kind by default), scaled down in node
// count so a default Generator is cheap enough to exercise in tests; Nodes
// can be raised to a much larger count for a realistic demo corpus.
type GeneratorConfig struct {
	Seed  int64
	Nodes int
	Procs int
	Kinds []string
}

// DefaultGeneratorConfig returns the shape used by the CLI's "generate"
// command by default.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:  1,
		Nodes: 16,
		Procs: 8,
		Kinds: []string{"CPU", "GPU", "OMP", "Py", "Util", "Chan", "SysMem"},
	}
}

type slotCacheTile struct {
	items     [][]Item
	itemMetas [][]ItemMeta
}

// Generator is a synthetic, deterministic DataSource: a fractal
// midpoint-displacement utilization curve per summary panel, and evenly
// spaced synthetic items per slot row.
type Generator struct {
	info           DataSourceInfo
	itemUIDField   FieldID
	intervalField  FieldID
	summaryCache   map[string][]UtilPoint
	slotCache      map[string]slotCacheTile
	rng            *rand.Rand
	nextItemUID    ItemUID
}

// NewGenerator builds a Generator with the given shape.
func NewGenerator(cfg GeneratorConfig) *Generator {
	rng := rand.New(rand.NewSource(cfg.Seed))
	entryInfo := generatorEntryInfo(rng, cfg)

	schema := NewFieldSchema()
	itemUIDField := schema.Insert("Item UID", false)
	intervalField := schema.Insert("Interval", false)

	interval := NewInterval(Timestamp(0), Timestamp(1_000_000+rng.Int63n(1_000_000)))

	return &Generator{
		info: DataSourceInfo{
			EntryInfo:   entryInfo,
			Interval:    interval,
			TileSet:     TileSet{},
			FieldSchema: schema,
		},
		itemUIDField:  itemUIDField,
		intervalField: intervalField,
		summaryCache:  make(map[string][]UtilPoint),
		slotCache:     make(map[string]slotCacheTile),
		rng:           rng,
	}
}

func (g *Generator) nextUID() ItemUID {
	uid := g.nextItemUID
	g.nextItemUID++
	return uid
}

var generatorColors = []Color{
	{R: 0, G: 0, B: 255, A: 255},     // blue
	{R: 0, G: 255, B: 0, A: 255},     // green
	{R: 255, G: 0, B: 0, A: 255},     // red
	{R: 255, G: 255, B: 0, A: 255},   // yellow
	{R: 240, G: 230, B: 140, A: 255}, // khaki
	{R: 0, G: 100, B: 0, A: 255},     // dark green
	{R: 0, G: 0, B: 139, A: 255},     // dark blue
}

func generatorEntryInfo(rng *rand.Rand, cfg GeneratorConfig) EntryInfo {
	panelColors := []Color{
		{R: 0, G: 0, B: 255, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 0, A: 255},
	}

	nodeSlots := make([]EntryInfo, cfg.Nodes)
	for node := 0; node < cfg.Nodes; node++ {
		kindSlots := make([]EntryInfo, len(cfg.Kinds))
		for i, kind := range cfg.Kinds {
			color := panelColors[i%len(panelColors)]
			procSlots := make([]EntryInfo, cfg.Procs)
			for proc := 0; proc < cfg.Procs; proc++ {
				rows := uint64(rng.Intn(64))
				procSlots[proc] = EntryInfo{
					Kind:      EntryKindSlot,
					ShortName: shortKindPrefix(kind) + itoa(proc),
					LongName:  "Node " + itoa(node) + " " + kind + " " + itoa(proc),
					MaxRows:   rows,
				}
			}
			kindSlots[i] = EntryInfo{
				Kind:      EntryKindPanel,
				ShortName: lower(kind),
				LongName:  "Node " + itoa(node) + " " + kind,
				Summary:   &EntryInfo{Kind: EntryKindSummary, Color: color},
				Slots:     procSlots,
			}
		}
		nodeSlots[node] = EntryInfo{
			Kind:      EntryKindPanel,
			ShortName: "n" + itoa(node),
			LongName:  "Node " + itoa(node),
			Slots:     kindSlots,
		}
	}
	return EntryInfo{
		Kind:      EntryKindPanel,
		ShortName: "root",
		LongName:  "root",
		Slots:     nodeSlots,
	}
}

func shortKindPrefix(kind string) string {
	if kind == "" {
		return ""
	}
	return lower(kind[:1])
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func (g *Generator) FetchDescription() DataSourceDescription {
	return DataSourceDescription{SourceLocator: []string{"Synthetic Generator"}}
}

func (g *Generator) FetchInfo() DataSourceInfo {
	return g.info
}

// generatePoint recursively subdivides [first, last] with midpoint
// displacement, perturbation shrinking geometrically with depth.
func (g *Generator) generatePoint(first, last UtilPoint, level, maxLevel int, out *[]UtilPoint) {
	time := Timestamp((int64(first.Time) + int64(last.Time)) / 2)
	util := (first.Util + last.Util) * 0.5
	diff := (g.rng.Float32() - 0.5) / pow32(1.2, maxLevel-level)
	util = clamp01(util + diff)
	point := UtilPoint{Time: time, Util: util}
	if level > 0 {
		g.generatePoint(first, point, level-1, maxLevel, out)
	}
	*out = append(*out, point)
	if level > 0 {
		g.generatePoint(point, last, level-1, maxLevel, out)
	}
}

func pow32(base float32, exp int) float32 {
	result := float32(1)
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

const generatorLevels = 8

func (g *Generator) generateSummary(entryID EntryID) []UtilPoint {
	key := entryID.Slug()
	if cached, ok := g.summaryCache[key]; ok {
		return cached
	}
	node, err := (&g.info.EntryInfo).Get(entryID)
	if err != nil {
		panic(err)
	}
	if node.Kind != EntryKindSummary {
		panic(ErrNotASummary)
	}
	first := UtilPoint{Time: g.info.Interval.Start, Util: g.rng.Float32()}
	last := UtilPoint{Time: g.info.Interval.Stop, Util: g.rng.Float32()}
	utilization := make([]UtilPoint, 0, 1<<(generatorLevels+1))
	utilization = append(utilization, first)
	g.generatePoint(first, last, generatorLevels, generatorLevels, &utilization)
	utilization = append(utilization, last)
	g.summaryCache[key] = utilization
	return utilization
}

const itemsPerRow = 1000

func (g *Generator) generateSlot(entryID EntryID) slotCacheTile {
	key := entryID.Slug()
	if cached, ok := g.slotCache[key]; ok {
		return cached
	}
	node, err := (&g.info.EntryInfo).Get(entryID)
	if err != nil {
		panic(err)
	}
	if node.Kind != EntryKindSlot {
		panic(ErrNotASlot)
	}

	items := make([][]Item, node.MaxRows)
	itemMetas := make([][]ItemMeta, node.MaxRows)
	for row := uint64(0); row < node.MaxRows; row++ {
		rowItems := make([]Item, 0, itemsPerRow)
		rowMetas := make([]ItemMeta, 0, itemsPerRow)
		for i := uint64(0); i < itemsPerRow; i++ {
			start := g.info.Interval.Lerp((float32(i) + 0.05) / float32(itemsPerRow))
			stop := g.info.Interval.Lerp((float32(i) + 0.95) / float32(itemsPerRow))
			interval := NewInterval(start, stop)
			color := generatorColors[(row*itemsPerRow+i)%uint64(len(generatorColors))]
			uid := g.nextUID()

			rowItems = append(rowItems, Item{ItemUID: uid, Interval: interval, Color: color})
			rowMetas = append(rowMetas, ItemMeta{
				ItemUID:          uid,
				OriginalInterval: interval,
				Title:            "Test Item",
				Fields: []FieldValue{
					{ID: g.intervalField, Value: FieldIntervalV(interval)},
					{ID: g.itemUIDField, Value: FieldU64(uint64(uid))},
				},
			})
		}
		items[row] = rowItems
		itemMetas[row] = rowMetas
	}

	tile := slotCacheTile{items: items, itemMetas: itemMetas}
	g.slotCache[key] = tile
	return tile
}

func (g *Generator) FetchSummaryTile(entryID EntryID, tileID TileID, full bool) (SummaryTile, error) {
	utilization := g.generateSummary(entryID)

	var tileUtilization []UtilPoint
	var lastPoint *UtilPoint
	for i := range utilization {
		point := utilization[i]
		if lastPoint != nil {
			lastInterval := NewInterval(lastPoint.Time, point.Time)
			if lastInterval.Contains(tileID.Interval.Start) {
				relative := lastInterval.Unlerp(tileID.Interval.Start)
				startUtil := (lastPoint.Util-point.Util)*relative + lastPoint.Util
				tileUtilization = append(tileUtilization, UtilPoint{Time: tileID.Interval.Start, Util: startUtil})
			}
			if tileID.Interval.Contains(point.Time) {
				tileUtilization = append(tileUtilization, point)
			}
			if lastInterval.Contains(tileID.Interval.Stop) {
				relative := lastInterval.Unlerp(tileID.Interval.Stop)
				stopUtil := (lastPoint.Util-point.Util)*relative + lastPoint.Util
				tileUtilization = append(tileUtilization, UtilPoint{Time: tileID.Interval.Stop, Util: stopUtil})
			}
		}
		lastPoint = &utilization[i]
	}

	return SummaryTile{EntryID: entryID, TileID: tileID, Data: SummaryTileData{Utilization: tileUtilization}}, nil
}

func (g *Generator) FetchSlotTile(entryID EntryID, tileID TileID, full bool) (SlotTile, error) {
	tile := g.generateSlot(entryID)

	slotItems := make([][]Item, len(tile.items))
	for r, row := range tile.items {
		var rowOut []Item
		for _, item := range row {
			if tileID.Interval.Overlaps(item.Interval) {
				clipped := item
				clipped.Interval = item.Interval.Intersection(tileID.Interval)
				rowOut = append(rowOut, clipped)
			}
		}
		slotItems[r] = rowOut
	}
	return SlotTile{EntryID: entryID, TileID: tileID, Data: SlotTileData{Items: slotItems}}, nil
}

func (g *Generator) FetchSlotMetaTile(entryID EntryID, tileID TileID, full bool) (SlotMetaTile, error) {
	tile := g.generateSlot(entryID)

	slotItems := make([][]ItemMeta, len(tile.items))
	for r := range tile.items {
		var rowOut []ItemMeta
		for c, item := range tile.items[r] {
			if tileID.Interval.Overlaps(item.Interval) {
				rowOut = append(rowOut, tile.itemMetas[r][c])
			}
		}
		slotItems[r] = rowOut
	}
	return SlotMetaTile{EntryID: entryID, TileID: tileID, Data: SlotMetaTileData{Items: slotItems}}, nil
}
