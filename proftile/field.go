package proftile

import "github.com/fxamacker/cbor/v2"

// FieldID identifies a named field in a FieldSchema.
type FieldID uint32

// FieldSchema is a bidirectional name<->FieldID mapping, plus a record of
// which fields are searchable. Insert is idempotent on name: inserting the
// same name twice returns the same FieldID.
type FieldSchema struct {
	names       []string
	ids         map[string]FieldID
	searchable  map[FieldID]bool
}

// NewFieldSchema returns an empty schema.
func NewFieldSchema() *FieldSchema {
	return &FieldSchema{
		ids:        make(map[string]FieldID),
		searchable: make(map[FieldID]bool),
	}
}

// Insert registers name if not already present and returns its FieldID.
func (s *FieldSchema) Insert(name string, searchable bool) FieldID {
	if id, ok := s.ids[name]; ok {
		return id
	}
	id := FieldID(len(s.names))
	s.names = append(s.names, name)
	s.ids[name] = id
	s.searchable[id] = searchable
	return id
}

// Name returns the name registered for id.
func (s *FieldSchema) Name(id FieldID) (string, bool) {
	if int(id) >= len(s.names) {
		return "", false
	}
	return s.names[id], true
}

// ID returns the FieldID registered for name.
func (s *FieldSchema) ID(name string) (FieldID, bool) {
	id, ok := s.ids[name]
	return id, ok
}

// Searchable reports whether id was inserted as searchable.
func (s *FieldSchema) Searchable(id FieldID) bool {
	return s.searchable[id]
}

// fieldSchemaWire is FieldSchema's on-the-wire shape: names indexed by
// FieldID, in insertion order, alongside a parallel searchability slice.
// FieldSchema's own fields are unexported (to keep Insert the only way to
// mutate it), so it implements cbor.Marshaler/Unmarshaler directly instead
// of exposing them to the struct tag based default encoding.
type fieldSchemaWire struct {
	Names      []string
	Searchable []bool
}

// MarshalCBOR implements cbor.Marshaler.
func (s *FieldSchema) MarshalCBOR() ([]byte, error) {
	searchable := make([]bool, len(s.names))
	for id := range s.names {
		searchable[id] = s.searchable[FieldID(id)]
	}
	return cbor.Marshal(fieldSchemaWire{Names: s.names, Searchable: searchable})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (s *FieldSchema) UnmarshalCBOR(data []byte) error {
	var w fieldSchemaWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	s.names = w.Names
	s.ids = make(map[string]FieldID, len(w.Names))
	s.searchable = make(map[FieldID]bool, len(w.Names))
	for i, name := range w.Names {
		s.ids[name] = FieldID(i)
		if i < len(w.Searchable) {
			s.searchable[FieldID(i)] = w.Searchable[i]
		}
	}
	return nil
}

// Equal reports whether s and other assign identical FieldIDs to identical
// names with identical searchability, used by the merge adapter to validate
// that all children share one field schema.
func (s *FieldSchema) Equal(other *FieldSchema) bool {
	if len(s.names) != len(other.names) {
		return false
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return false
		}
	}
	for id, searchable := range s.searchable {
		if other.searchable[id] != searchable {
			return false
		}
	}
	return true
}

// FieldKind discriminates the Field union.
type FieldKind int

const (
	FieldKindEmpty FieldKind = iota
	FieldKindI64
	FieldKindU64
	FieldKindString
	FieldKindInterval
	FieldKindItemLink
	FieldKindVec
)

// ItemLink is a Field payload referencing another item, used to cross-link
// related events (e.g. a wait site pointing at the item it waited on).
type ItemLink struct {
	ItemUID  ItemUID
	Title    string
	Interval Interval
	EntryID  EntryID
}

// Field is a tagged union of the value kinds an ItemMeta can carry.
type Field struct {
	Kind     FieldKind
	I64      int64
	U64      uint64
	String   string
	Interval Interval
	ItemLink ItemLink
	Vec      []Field
}

func FieldI64(v int64) Field      { return Field{Kind: FieldKindI64, I64: v} }
func FieldU64(v uint64) Field     { return Field{Kind: FieldKindU64, U64: v} }
func FieldString(v string) Field  { return Field{Kind: FieldKindString, String: v} }
func FieldIntervalV(v Interval) Field { return Field{Kind: FieldKindInterval, Interval: v} }
func FieldItemLink(v ItemLink) Field  { return Field{Kind: FieldKindItemLink, ItemLink: v} }
func FieldVec(v []Field) Field    { return Field{Kind: FieldKindVec, Vec: v} }

// mapItemLinks recursively applies fn to every ItemLink reachable from f
// (including nested inside Vec fields), returning a new Field tree.
func mapItemLinks(f Field, fn func(ItemLink) ItemLink) Field {
	switch f.Kind {
	case FieldKindItemLink:
		return Field{Kind: FieldKindItemLink, ItemLink: fn(f.ItemLink)}
	case FieldKindVec:
		next := make([]Field, len(f.Vec))
		for i, elt := range f.Vec {
			next[i] = mapItemLinks(elt, fn)
		}
		return Field{Kind: FieldKindVec, Vec: next}
	default:
		return f
	}
}

// ItemUID uniquely identifies an Item across a single DataSource.
type ItemUID uint64

// Item is the minimal, always-loaded representation of an event: a time
// range, a uid, and a display color.
type Item struct {
	ItemUID  ItemUID
	Interval Interval
	Color    Color
}

// ItemMeta is the full, lazily-loaded representation of an event: title,
// original (unclipped) interval, and a set of named fields.
type ItemMeta struct {
	ItemUID          ItemUID
	OriginalInterval Interval
	Title            string
	Fields           []FieldValue
}

// FieldValue pairs a FieldID with its value for one ItemMeta.
type FieldValue struct {
	ID    FieldID
	Value Field
}
