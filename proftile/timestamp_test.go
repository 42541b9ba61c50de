package proftile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampUnits(t *testing.T) {
	cases := []struct {
		in   string
		want Timestamp
	}{
		{"123s", 123_000_000_000},
		{"123.456s", 123_456_000_000},
		{"  123.456   s  ", 123_456_000_000},
		{"123.456MS", 123_456_000},
		{"123.456ms", 123_456_000},
		{"123.456us", 123_456},
		{"123.456ns", 123},
		{"123NS", 123},
	}
	for _, c := range cases {
		got, err := ParseTimestamp(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTimestampErrors(t *testing.T) {
	_, err := ParseTimestamp("123")
	assert.ErrorIs(t, err, ErrNoUnit)

	_, err = ParseTimestamp("s")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseTimestamp("123xyz")
	assert.ErrorIs(t, err, ErrInvalidUnit)

	_, err = ParseTimestamp("1.2.3s")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestIntervalContainsExclusiveStop(t *testing.T) {
	iv := NewInterval(0, 10)
	assert.True(t, iv.Contains(0))
	assert.True(t, iv.Contains(9))
	assert.False(t, iv.Contains(10))
}

func TestIntervalOverlap(t *testing.T) {
	a := NewInterval(0, 10)
	b := NewInterval(10, 20)
	assert.False(t, a.Overlaps(b), "half-open intervals sharing only a boundary don't overlap")

	c := NewInterval(5, 15)
	assert.True(t, a.Overlaps(c))

	empty := NewInterval(5, 5)
	assert.False(t, empty.Overlaps(empty), "empty intervals overlap nothing, not even themselves")
}

func TestIntervalCenterAndDuration(t *testing.T) {
	iv := NewInterval(0, 100)
	assert.EqualValues(t, 100, iv.DurationNs())
	assert.EqualValues(t, 50, iv.Center())
}

func TestIntervalIntersectionUnion(t *testing.T) {
	a := NewInterval(0, 10)
	b := NewInterval(5, 20)
	assert.Equal(t, NewInterval(5, 10), a.Intersection(b))
	assert.Equal(t, NewInterval(0, 20), a.Union(b))
}

func TestIntervalGrowTranslate(t *testing.T) {
	iv := NewInterval(10, 20)
	assert.Equal(t, NewInterval(5, 25), iv.Grow(5))
	assert.Equal(t, NewInterval(15, 25), iv.Translate(5))
}

func TestIntervalLerpUnlerp(t *testing.T) {
	iv := NewInterval(0, 100)
	assert.Equal(t, Timestamp(50), iv.Lerp(0.5))
	assert.InDelta(t, float32(0.5), iv.Unlerp(50), 1e-6)
}

func TestIntervalDisplay(t *testing.T) {
	cases := []struct {
		iv   Interval
		want string
	}{
		{NewInterval(0, 123), "from 0 to 123 ns (duration: 123 ns)"},
		{NewInterval(123_456_789_000, 123_456_789_012), "from 123.456 789 000 to 123.456 789 012 s (duration: 12 ns)"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.iv.Display())
	}
}
