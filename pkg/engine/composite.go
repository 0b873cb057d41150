package engine

import (
	"fmt"
	"strings"

	"simsetgo/pkg/sim"
	"simsetgo/pkg/simvar"
)

// Canonical names of the variables absorbed by the composite groups.
const (
	varLatitude  = "PLANE LATITUDE"
	varLongitude = "PLANE LONGITUDE"
	varAltitude  = "PLANE ALTITUDE"
	varPitch     = "PLANE PITCH DEGREES"
	varBank      = "PLANE BANK DEGREES"
	varHeading   = "PLANE HEADING DEGREES TRUE"
	varOnGround  = "SIM ON GROUND"
	varAirspeed  = "AIRSPEED TRUE"
	varVelX      = "VELOCITY WORLD X"
	varVelY      = "VELOCITY WORLD Y"
	varVelZ      = "VELOCITY WORLD Z"
)

// IsCompositeMember reports whether the canonical variable name belongs to
// the initial-position or world-velocity composite. Such variables can only
// be applied as part of a full pass.
func IsCompositeMember(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case varLatitude, varLongitude, varAltitude, varPitch, varBank, varHeading,
		varOnGround, varAirspeed, varVelX, varVelY, varVelZ:
		return true
	}
	return false
}

// compositeBuilder accumulates the teleport and world-velocity composites
// from scattered items during one pass. Items it absorbs are flagged
// consumed and skipped by the remainder loop.
type compositeBuilder struct {
	pos      sim.InitPosition
	onGround bool
	vel      [3]float64
	velSet   [3]bool
}

// scan walks the normalized items, absorbing composite members in place.
// Unparsable values on absorbed members surface as warnings.
func (b *compositeBuilder) scan(items []Item) (warnings []string) {
	for i := range items {
		it := &items[i]
		if it.skipped {
			continue
		}

		name := strings.ToUpper(it.Name)
		if !IsCompositeMember(name) {
			continue
		}
		it.consumed = true

		if name == varOnGround {
			on, err := parseTruthy(it.Value)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", it.Name, err))
				continue
			}
			b.onGround = on
			if on {
				b.pos.OnGround = 1
			}
			continue
		}

		f, err := simvar.ParseFloat(it.Value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: invalid value %q", it.Name, it.Value))
			continue
		}

		switch name {
		case varLatitude:
			b.pos.Latitude = f
		case varLongitude:
			b.pos.Longitude = f
		case varAltitude:
			b.pos.Altitude = f
		case varPitch:
			b.pos.Pitch = f
		case varBank:
			b.pos.Bank = f
		case varHeading:
			b.pos.Heading = f
		case varAirspeed:
			b.pos.Airspeed = uint32(f)
		case varVelX:
			b.vel[0], b.velSet[0] = f, true
		case varVelY:
			b.vel[1], b.velSet[1] = f, true
		case varVelZ:
			b.vel[2], b.velSet[2] = f, true
		}
	}

	// A grounded aircraft has no airspeed to restore.
	if b.onGround {
		b.pos.Airspeed = 0
	}
	return warnings
}

// hasPosition reports whether any position member was populated.
func (b *compositeBuilder) hasPosition() bool {
	return !b.pos.IsZero()
}

// hasVelocity reports whether the velocity composite is complete. Partial
// component sets are never transmitted.
func (b *compositeBuilder) hasVelocity() bool {
	return b.velSet[0] && b.velSet[1] && b.velSet[2]
}

// velocity returns the components to transmit. On the ground the aircraft
// must not move, so all components are forced to zero.
func (b *compositeBuilder) velocity() (x, y, z float64) {
	if b.onGround {
		return 0, 0, 0
	}
	return b.vel[0], b.vel[1], b.vel[2]
}

// parseTruthy interprets a boolean token or any number; non-zero is true.
func parseTruthy(s string) (bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	f, err := simvar.ParseFloat(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value %q", s)
	}
	return f != 0, nil
}
