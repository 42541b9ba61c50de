package proftile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldSchemaInsertIdempotent(t *testing.T) {
	s := NewFieldSchema()
	id1 := s.Insert("tid", true)
	id2 := s.Insert("tid", false)
	assert.Equal(t, id1, id2, "inserting an existing name must return its original FieldID")
	assert.True(t, s.Searchable(id1), "the searchable flag set on first insert wins")

	id3 := s.Insert("note", false)
	assert.NotEqual(t, id1, id3)

	name, ok := s.Name(id3)
	assert.True(t, ok)
	assert.Equal(t, "note", name)

	got, ok := s.ID("tid")
	assert.True(t, ok)
	assert.Equal(t, id1, got)

	_, ok = s.ID("missing")
	assert.False(t, ok)
}

func TestFieldSchemaEqual(t *testing.T) {
	a := NewFieldSchema()
	a.Insert("tid", true)
	a.Insert("note", false)

	b := NewFieldSchema()
	b.Insert("tid", true)
	b.Insert("note", false)

	assert.True(t, a.Equal(b))

	c := NewFieldSchema()
	c.Insert("tid", false)
	c.Insert("note", false)
	assert.False(t, a.Equal(c), "differing searchability must break equality")

	d := NewFieldSchema()
	d.Insert("note", false)
	d.Insert("tid", true)
	assert.False(t, a.Equal(d), "differing insertion order must break equality")
}

func TestFieldSchemaCBORRoundTrip(t *testing.T) {
	s := NewFieldSchema()
	s.Insert("tid", true)
	s.Insert("note", false)

	encoded, err := s.MarshalCBOR()
	assert.NoError(t, err)

	decoded := NewFieldSchema()
	assert.NoError(t, decoded.UnmarshalCBOR(encoded))
	assert.True(t, s.Equal(decoded))
}

func TestMapItemLinksRecursesThroughVec(t *testing.T) {
	link1 := ItemLink{ItemUID: 1, Title: "a"}
	link2 := ItemLink{ItemUID: 2, Title: "b"}
	f := FieldVec([]Field{
		FieldItemLink(link1),
		FieldString("unchanged"),
		FieldVec([]Field{FieldItemLink(link2)}),
	})

	mapped := mapItemLinks(f, func(l ItemLink) ItemLink {
		l.ItemUID = l.ItemUID + 100
		return l
	})

	assert.Equal(t, FieldKindVec, mapped.Kind)
	assert.EqualValues(t, 101, mapped.Vec[0].ItemLink.ItemUID)
	assert.Equal(t, "unchanged", mapped.Vec[1].String)
	assert.EqualValues(t, 102, mapped.Vec[2].Vec[0].ItemLink.ItemUID)
}
