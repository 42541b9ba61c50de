package proftile

import (
	"fmt"
	"strconv"
	"strings"
)

// Timestamp is a point in time expressed in nanoseconds.
type Timestamp int64

var unitFactors = map[string]float64{
	"ns": 1,
	"us": 1_000,
	"ms": 1_000_000,
	"s":  1_000_000_000,
}

// ParseTimestamp parses a string of the form "<decimal><unit>" where unit is
// one of ns, us, ms, s (case-insensitive, surrounding whitespace tolerated).
func ParseTimestamp(s string) (Timestamp, error) {
	trimmed := strings.TrimSpace(s)
	split := -1
	for i, r := range trimmed {
		if !(r >= '0' && r <= '9') && r != '.' {
			split = i
			break
		}
	}
	if split < 0 {
		return 0, fmt.Errorf("%w: %q has no unit", ErrNoUnit, s)
	}
	valuePart := trimmed[:split]
	unitPart := strings.ToLower(strings.TrimSpace(trimmed[split:]))
	value, err := strconv.ParseFloat(valuePart, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidValue, s, err)
	}
	factor, ok := unitFactors[unitPart]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, unitPart)
	}
	return Timestamp(value * factor), nil
}

// timestampUnits picks the largest whole unit for a value, and how many
// digits (rendered in groups of 3) to show after the decimal separator.
type timestampUnits struct {
	divisor             int64
	digitsAfterSeparator int
	unitName            string
}

func unitsForTimestamp(t Timestamp) timestampUnits {
	switch {
	case t >= 1_000_000_000 || t <= -1_000_000_000:
		return timestampUnits{1_000_000_000, 3, "s"}
	case t >= 1_000_000 || t <= -1_000_000:
		return timestampUnits{1_000_000, 3, "ms"}
	case t >= 1_000 || t <= -1_000:
		return timestampUnits{1_000, 3, "us"}
	default:
		return timestampUnits{1, 0, "ns"}
	}
}

func unitsForInterval(iv Interval) timestampUnits {
	base := unitsForTimestamp(iv.Stop)
	duration := iv.DurationNs()
	switch base.unitName {
	case "s":
		switch {
		case duration >= nsPerMs:
			base.digitsAfterSeparator = 3
		case duration >= nsPerUs:
			base.digitsAfterSeparator = 6
		default:
			base.digitsAfterSeparator = 9
		}
	case "ms":
		switch {
		case duration >= nsPerUs:
			base.digitsAfterSeparator = 3
		default:
			base.digitsAfterSeparator = 6
		}
	case "us":
		base.digitsAfterSeparator = 3
	}
	return base
}

const (
	nsPerUs = 1_000
	nsPerMs = 1_000_000
	nsPerS  = 1_000_000_000
)

// Display formats t using the largest whole unit, with three digits after a
// decimal separator, e.g. "123.456 s".
func (t Timestamp) Display(includeUnits bool) string {
	return displayTimestamp(t, unitsForTimestamp(t), includeUnits)
}

func displayTimestamp(t Timestamp, units timestampUnits, includeUnits bool) string {
	neg := t < 0
	v := int64(t)
	if neg {
		v = -v
	}
	whole := v / units.divisor
	remainder := v % units.divisor

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	fmt.Fprintf(&b, "%d", whole)

	if units.digitsAfterSeparator > 0 {
		b.WriteByte('.')
		groupDivisor := units.divisor / 1_000
		fmt.Fprintf(&b, "%03d", remainder/groupDivisor)
		if units.digitsAfterSeparator > 3 {
			fmt.Fprintf(&b, " %03d", (remainder/(groupDivisor/1_000))%1_000)
		}
		if units.digitsAfterSeparator > 6 {
			fmt.Fprintf(&b, " %03d", remainder%(groupDivisor/1_000))
		}
	}
	if includeUnits {
		b.WriteByte(' ')
		b.WriteString(units.unitName)
	}
	return b.String()
}

// Interval is a half-open time range [Start, Stop).
type Interval struct {
	Start Timestamp
	Stop  Timestamp
}

// NewInterval builds an interval; Start must be <= Stop.
func NewInterval(start, stop Timestamp) Interval {
	return Interval{Start: start, Stop: stop}
}

// Center returns the midpoint of the interval.
func (iv Interval) Center() Timestamp {
	return iv.Start + Timestamp(iv.DurationNs()/2)
}

// DurationNs returns Stop - Start in nanoseconds.
func (iv Interval) DurationNs() int64 {
	return int64(iv.Stop) - int64(iv.Start)
}

// Contains reports whether point lies in [Start, Stop).
func (iv Interval) Contains(point Timestamp) bool {
	return point >= iv.Start && point < iv.Stop
}

// Overlaps reports whether iv and other share any point. Empty intervals
// overlap nothing, including themselves.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Start >= iv.Stop || other.Start >= other.Stop {
		return false
	}
	return !(other.Stop <= iv.Start || other.Start >= iv.Stop)
}

// Intersection returns the overlap of iv and other; may be empty or invalid
// (Start > Stop) if they don't overlap.
func (iv Interval) Intersection(other Interval) Interval {
	start := iv.Start
	if other.Start > start {
		start = other.Start
	}
	stop := iv.Stop
	if other.Stop < stop {
		stop = other.Stop
	}
	return Interval{Start: start, Stop: stop}
}

// Union returns the smallest interval containing both iv and other.
func (iv Interval) Union(other Interval) Interval {
	start := iv.Start
	if other.Start < start {
		start = other.Start
	}
	stop := iv.Stop
	if other.Stop > stop {
		stop = other.Stop
	}
	return Interval{Start: start, Stop: stop}
}

// Unlerp returns the fraction of iv's duration at which time falls.
func (iv Interval) Unlerp(time Timestamp) float32 {
	return float32(int64(time)-int64(iv.Start)) / float32(iv.DurationNs())
}

// Lerp returns the timestamp at fraction value through iv's duration.
func (iv Interval) Lerp(value float32) Timestamp {
	return Timestamp(int64(roundFloat(value*float32(iv.DurationNs()))) + int64(iv.Start))
}

func roundFloat(f float32) float32 {
	if f >= 0 {
		return float32(int64(f + 0.5))
	}
	return float32(int64(f - 0.5))
}

// Grow expands iv by durationNs on both ends.
func (iv Interval) Grow(durationNs int64) Interval {
	return Interval{Start: iv.Start - Timestamp(durationNs), Stop: iv.Stop + Timestamp(durationNs)}
}

// Translate shifts iv by durationNs.
func (iv Interval) Translate(durationNs int64) Interval {
	return Interval{Start: iv.Start + Timestamp(durationNs), Stop: iv.Stop + Timestamp(durationNs)}
}

// Display formats iv as "from <start> to <stop> (duration: <duration>)".
func (iv Interval) Display() string {
	units := unitsForInterval(iv)
	start := displayTimestamp(iv.Start, units, false)
	stop := displayTimestamp(iv.Stop, units, true)
	durationUnits := unitsForTimestamp(Timestamp(iv.DurationNs()))
	duration := displayTimestamp(Timestamp(iv.DurationNs()), durationUnits, true)
	return fmt.Sprintf("from %s to %s (duration: %s)", start, stop, duration)
}

func (iv Interval) String() string {
	return iv.Display()
}
