package engine

import (
	"strings"

	"simsetgo/pkg/simvar"
)

// interpolation holds the resolved calibration for a percent-valued item:
// two (value, parameter) pairs for the same native event.
type interpolation struct {
	event  string
	v0, p0 float64
	v1, p1 float64
}

// qualifiesForInterpolation checks the static preconditions: a percent unit,
// exactly two mappings, and both mappings naming the same event. Whether that
// event resolves natively is the resolver's business.
func qualifiesForInterpolation(it *Item) bool {
	if !strings.Contains(strings.ToLower(it.Unit), "percent") {
		return false
	}
	if len(it.Mappings) != 2 {
		return false
	}
	return strings.EqualFold(it.Mappings[0].EventName, it.Mappings[1].EventName)
}

// calibration extracts the interpolation pairs, normalized so v0 <= v1.
// Returns false if either match value fails to parse as a percent number.
func calibration(it *Item) (interpolation, bool) {
	v0, ok := parsePercent(it.Mappings[0].MatchValue)
	if !ok {
		return interpolation{}, false
	}
	v1, ok := parsePercent(it.Mappings[1].MatchValue)
	if !ok {
		return interpolation{}, false
	}

	c := interpolation{
		event: it.Mappings[0].EventName,
		v0:    v0, p0: it.Mappings[0].Param,
		v1: v1, p1: it.Mappings[1].Param,
	}
	if c.v0 > c.v1 {
		c.v0, c.v1 = c.v1, c.v0
		c.p0, c.p1 = c.p1, c.p0
	}
	return c, true
}

// paramFor linearly interpolates the dispatch parameter for value, clamping
// into the calibration domain. A degenerate domain (v0 == v1) yields p0.
func (c interpolation) paramFor(value float64) float64 {
	if value < c.v0 {
		value = c.v0
	}
	if value > c.v1 {
		value = c.v1
	}
	ratio := 0.0
	if c.v1 != c.v0 {
		ratio = (value - c.v0) / (c.v1 - c.v0)
	}
	return c.p0 + (c.p1-c.p0)*ratio
}

// parsePercent parses a percent number: an invariant float with an optional
// trailing "%".
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	f, err := simvar.ParseFloat(s)
	if err != nil {
		return 0, false
	}
	return f, true
}
