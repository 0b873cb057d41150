package simvar

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition describes a simulator variable as published by the SDK: the
// canonical name, default unit, wire type, and whether it accepts writes.
type Definition struct {
	Name     string `yaml:"name"`
	Unit     string `yaml:"unit"`
	Type     string `yaml:"type"` // DataType name, FLOAT64 when empty
	Settable bool   `yaml:"settable"`
}

// DataTypeOf returns the parsed wire type of the definition.
func (d Definition) DataTypeOf() DataType {
	if d.Type == "" {
		return TypeFloat64
	}
	return ParseDataType(d.Type)
}

// Registry resolves user-entered variable names to canonical definitions.
// Lookups are case-insensitive and trimmed.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry returns a registry seeded with the built-in definitions.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]Definition, len(builtinDefs))}
	for _, d := range builtinDefs {
		r.add(d)
	}
	return r
}

func (r *Registry) add(d Definition) {
	key := strings.ToLower(strings.TrimSpace(d.Name))
	if key == "" {
		return
	}
	r.defs[key] = d
}

// Lookup resolves name to its canonical definition.
func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// LoadExtra merges additional definitions from a YAML file. Later entries
// override built-ins with the same name.
func (r *Registry) LoadExtra(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definitions file: %w", err)
	}
	var defs []Definition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("failed to parse definitions file: %w", err)
	}
	for _, d := range defs {
		r.add(d)
	}
	return nil
}

// builtinDefs covers the variables the tool sets most often. The list is not
// exhaustive; unknown names fall back to FLOAT64/settable at normalization.
var builtinDefs = []Definition{
	{Name: "PLANE LATITUDE", Unit: "degrees", Type: "FLOAT64", Settable: true},
	{Name: "PLANE LONGITUDE", Unit: "degrees", Type: "FLOAT64", Settable: true},
	{Name: "PLANE ALTITUDE", Unit: "feet", Type: "FLOAT64", Settable: true},
	{Name: "PLANE PITCH DEGREES", Unit: "degrees", Type: "FLOAT64", Settable: true},
	{Name: "PLANE BANK DEGREES", Unit: "degrees", Type: "FLOAT64", Settable: true},
	{Name: "PLANE HEADING DEGREES TRUE", Unit: "degrees", Type: "FLOAT64", Settable: true},
	{Name: "PLANE HEADING DEGREES MAGNETIC", Unit: "degrees", Type: "FLOAT64", Settable: true},
	{Name: "SIM ON GROUND", Unit: "bool", Type: "INT32", Settable: false},
	{Name: "AIRSPEED TRUE", Unit: "knots", Type: "FLOAT64", Settable: true},
	{Name: "AIRSPEED INDICATED", Unit: "knots", Type: "FLOAT64", Settable: true},
	{Name: "VELOCITY WORLD X", Unit: "feet per second", Type: "FLOAT64", Settable: true},
	{Name: "VELOCITY WORLD Y", Unit: "feet per second", Type: "FLOAT64", Settable: true},
	{Name: "VELOCITY WORLD Z", Unit: "feet per second", Type: "FLOAT64", Settable: true},
	{Name: "VELOCITY BODY X", Unit: "feet per second", Type: "FLOAT64", Settable: true},
	{Name: "VELOCITY BODY Y", Unit: "feet per second", Type: "FLOAT64", Settable: true},
	{Name: "VELOCITY BODY Z", Unit: "feet per second", Type: "FLOAT64", Settable: true},
	{Name: "GENERAL ENG THROTTLE LEVER POSITION:1", Unit: "percent", Type: "FLOAT64", Settable: true},
	{Name: "GENERAL ENG THROTTLE LEVER POSITION:2", Unit: "percent", Type: "FLOAT64", Settable: true},
	{Name: "GENERAL ENG MIXTURE LEVER POSITION:1", Unit: "percent", Type: "FLOAT64", Settable: true},
	{Name: "GENERAL ENG PROPELLER LEVER POSITION:1", Unit: "percent", Type: "FLOAT64", Settable: true},
	{Name: "GENERAL ENG COMBUSTION:1", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "FLAPS HANDLE INDEX", Unit: "number", Type: "INT32", Settable: true},
	{Name: "FLAPS HANDLE PERCENT", Unit: "percent", Type: "FLOAT64", Settable: false},
	{Name: "GEAR HANDLE POSITION", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "SPOILERS HANDLE POSITION", Unit: "percent", Type: "FLOAT64", Settable: true},
	{Name: "BRAKE PARKING POSITION", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "LIGHT LANDING", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "LIGHT TAXI", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "LIGHT BEACON", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "LIGHT NAV", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "LIGHT STROBE", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "ELECTRICAL MASTER BATTERY", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "GENERAL ENG MASTER ALTERNATOR:1", Unit: "bool", Type: "INT32", Settable: true},
	{Name: "AVIONICS MASTER SWITCH", Unit: "bool", Type: "INT32", Settable: false},
	{Name: "FUEL TANK LEFT MAIN QUANTITY", Unit: "gallons", Type: "FLOAT64", Settable: true},
	{Name: "FUEL TANK RIGHT MAIN QUANTITY", Unit: "gallons", Type: "FLOAT64", Settable: true},
	{Name: "AUTOPILOT MASTER", Unit: "bool", Type: "INT32", Settable: false},
	{Name: "AUTOPILOT ALTITUDE LOCK VAR", Unit: "feet", Type: "FLOAT64", Settable: true},
	{Name: "AUTOPILOT HEADING LOCK DIR", Unit: "degrees", Type: "FLOAT64", Settable: true},
	{Name: "AUTOPILOT AIRSPEED HOLD VAR", Unit: "knots", Type: "FLOAT64", Settable: true},
	{Name: "AUTOPILOT VERTICAL HOLD VAR", Unit: "feet/minute", Type: "FLOAT64", Settable: true},
	{Name: "TRANSPONDER CODE:1", Unit: "number", Type: "INT32", Settable: true},
	{Name: "COM ACTIVE FREQUENCY:1", Unit: "MHz", Type: "FLOAT64", Settable: false},
	{Name: "NAV ACTIVE FREQUENCY:1", Unit: "MHz", Type: "FLOAT64", Settable: false},
	{Name: "KOHLSMAN SETTING HG", Unit: "inHg", Type: "FLOAT64", Settable: true},
	{Name: "ELEVATOR TRIM POSITION", Unit: "radians", Type: "FLOAT64", Settable: true},
	{Name: "RUDDER TRIM PCT", Unit: "percent", Type: "FLOAT64", Settable: true},
	{Name: "AILERON TRIM PCT", Unit: "percent", Type: "FLOAT64", Settable: true},
	{Name: "ATC ID", Unit: "", Type: "STRING32", Settable: true},
	{Name: "TITLE", Unit: "", Type: "STRING256", Settable: false},
	{Name: "STRUCT LATLONALT", Unit: "", Type: "LATLONALT", Settable: false},
	{Name: "STRUCT WORLDVELOCITY", Unit: "", Type: "XYZ", Settable: true},
}
