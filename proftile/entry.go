package proftile

import (
	"strconv"
	"strings"
)

// EntryID addresses a node in the EntryInfo tree: a sequence of signed path
// elements where -1 selects a Panel's summary child and any value >= 0
// selects the slot at that index.
type EntryID struct {
	path []int64
}

// RootEntryID returns the EntryID of the tree root.
func RootEntryID() EntryID {
	return EntryID{}
}

// Child returns the EntryID of the slot child at index.
func (e EntryID) Child(index uint64) EntryID {
	next := make([]int64, len(e.path)+1)
	copy(next, e.path)
	next[len(e.path)] = int64(index)
	return EntryID{path: next}
}

// Summary returns the EntryID of e's summary child.
func (e EntryID) Summary() EntryID {
	next := make([]int64, len(e.path)+1)
	copy(next, e.path)
	next[len(e.path)] = -1
	return EntryID{path: next}
}

// Level returns the depth of e (0 for the root).
func (e EntryID) Level() int {
	return len(e.path)
}

// EntryIndex is the decoded meaning of a single EntryID path element.
type EntryIndex struct {
	IsSummary bool
	Slot      uint64
}

// Index decodes the path element at level.
func (e EntryID) Index(level int) EntryIndex {
	v := e.path[level]
	if v < 0 {
		return EntryIndex{IsSummary: true}
	}
	return EntryIndex{Slot: uint64(v)}
}

// LastIndex decodes the final path element. Panics if e is the root.
func (e EntryID) LastIndex() EntryIndex {
	return e.Index(len(e.path) - 1)
}

// SlotIndex decodes the path element at level, which must be a slot index.
func (e EntryID) SlotIndex(level int) uint64 {
	idx := e.Index(level)
	if idx.IsSummary {
		panic("SlotIndex called on a summary path element")
	}
	return idx.Slot
}

// LastSlotIndex decodes the final path element, which must be a slot index.
func (e EntryID) LastSlotIndex() uint64 {
	return e.SlotIndex(len(e.path) - 1)
}

// HasPrefix reports whether prefix is a prefix of e's path (prefix itself
// included).
func (e EntryID) HasPrefix(prefix EntryID) bool {
	if len(prefix.path) > len(e.path) {
		return false
	}
	for i, v := range prefix.path {
		if e.path[i] != v {
			return false
		}
	}
	return true
}

// WithLevel0Offset returns a copy of e with its first path element shifted
// by delta. Used by the merge adapter to remap between child and merged
// EntryID spaces. Panics if e is the root or its first element is a summary.
func (e EntryID) WithLevel0Offset(delta int64) EntryID {
	if len(e.path) == 0 {
		panic("WithLevel0Offset called on root EntryID")
	}
	if e.path[0] < 0 {
		panic("WithLevel0Offset called on an EntryID whose level-0 child is a summary")
	}
	next := make([]int64, len(e.path))
	copy(next, e.path)
	next[0] += delta
	return EntryID{path: next}
}

// Slug returns the canonical underscore-joined decimal encoding of e.
func (e EntryID) Slug() string {
	if len(e.path) == 0 {
		return ""
	}
	parts := make([]string, len(e.path))
	for i, v := range e.path {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, "_")
}

// ParseEntryID decodes a slug produced by Slug.
func ParseEntryID(s string) (EntryID, error) {
	if s == "" {
		return EntryID{}, nil
	}
	parts := strings.Split(s, "_")
	path := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return EntryID{}, ErrInvalidSlug
		}
		path[i] = v
	}
	return EntryID{path: path}, nil
}

// EntryInfo describes a node in the profile's hierarchical tree. Exactly one
// of Panel, Slot, or Summary is populated, selected by Kind.
type EntryInfo struct {
	Kind EntryKind

	// Panel fields.
	ShortName string
	LongName  string
	Summary   *EntryInfo // optional Summary child, Panel only
	Slots     []EntryInfo

	// Slot fields (ShortName/LongName shared with Panel above).
	MaxRows uint64

	// Summary fields.
	Color Color
}

// EntryKind discriminates the EntryInfo union.
type EntryKind int

const (
	EntryKindPanel EntryKind = iota
	EntryKindSlot
	EntryKindSummary
)

// Color is an RGBA color, stored as four bytes.
type Color struct {
	R, G, B, A uint8
}

// Get walks id from the root of e, returning the addressed node. Returns
// ErrEntryNotFound if the path doesn't resolve, ErrNotAPanel if an
// intermediate step isn't a Panel.
func (e *EntryInfo) Get(id EntryID) (*EntryInfo, error) {
	cur := e
	for level := 0; level < len(id.path); level++ {
		if cur.Kind != EntryKindPanel {
			return nil, ErrNotAPanel
		}
		idx := id.Index(level)
		if idx.IsSummary {
			if cur.Summary == nil {
				return nil, ErrEntryNotFound
			}
			cur = cur.Summary
			continue
		}
		if idx.Slot >= uint64(len(cur.Slots)) {
			return nil, ErrEntryNotFound
		}
		cur = &cur.Slots[idx.Slot]
	}
	return cur, nil
}

// Nodes returns the number of direct, level-0 children of the root panel.
func (e *EntryInfo) Nodes() int {
	return len(e.Slots)
}

// Kinds returns the short names of the root's grandchildren (the "kind"
// panels nested one level below each top-level node), deduplicated in
// first-seen order.
func (e *EntryInfo) Kinds() []string {
	seen := make(map[string]bool)
	var result []string
	for _, node := range e.Slots {
		for _, kind := range node.Slots {
			if !seen[kind.ShortName] {
				seen[kind.ShortName] = true
				result = append(result, kind.ShortName)
			}
		}
	}
	return result
}
