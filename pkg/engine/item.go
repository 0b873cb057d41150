// Package engine applies a declarative set of simulator variables and event
// mappings to a live session: normalization, composite grouping, two-tier
// event resolution, interpolation, and per-item warning accumulation.
package engine

import (
	"strings"

	"simsetgo/pkg/simvar"
)

// EventMapping translates a specific variable value into an input-event
// dispatch with a parameter.
type EventMapping struct {
	MatchValue string
	EventName  string
	Param      float64
}

// Item is one named variable's desired state for a pass. A fresh normalized
// copy is built at the start of every apply; the caller's rows are never
// mutated.
type Item struct {
	Name     string
	Unit     string
	Type     simvar.DataType
	Settable bool
	Value    string
	Mappings []EventMapping

	// skipped marks items excluded during normalization (no stored value).
	skipped bool
	// consumed marks items absorbed by a composite group.
	consumed bool
}

// Normalize resolves every item through the definition registry and returns
// fresh copies. A known variable takes the registry's canonical name, unit,
// type and settability; unknown variables keep the user-entered name and unit
// and default to FLOAT64, settable.
func Normalize(reg *simvar.Registry, items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		n := Item{
			Name:     strings.TrimSpace(it.Name),
			Unit:     strings.TrimSpace(it.Unit),
			Type:     simvar.TypeFloat64,
			Settable: true,
			Value:    it.Value,
			Mappings: append([]EventMapping(nil), it.Mappings...),
		}
		if def, ok := reg.Lookup(n.Name); ok {
			n.Name = def.Name
			n.Unit = def.Unit
			n.Type = def.DataTypeOf()
			n.Settable = def.Settable
		}
		out[i] = n
	}
	return out
}

// matchMapping returns the first mapping whose match value equals the item's
// current value, compared case-insensitively after trimming.
func matchMapping(it *Item) (EventMapping, bool) {
	val := strings.TrimSpace(it.Value)
	for _, m := range it.Mappings {
		if strings.EqualFold(strings.TrimSpace(m.MatchValue), val) {
			return m, true
		}
	}
	return EventMapping{}, false
}
