package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"simsetgo/pkg/sim"
	"simsetgo/pkg/sim/mocksim"
	"simsetgo/pkg/simvar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(mock *mocksim.Client) *Engine {
	return New(Options{
		Sessions:    func() sim.Session { return mock },
		SettleDelay: time.Millisecond,
	})
}

func TestApplyNormalization(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "  airspeed indicated ", Unit: "whatever", Value: "120"},
	})
	require.NoError(t, err)

	// Registry definition overrides user-entered name, unit, and type.
	require.Len(t, res.Items, 1)
	assert.Equal(t, "AIRSPEED INDICATED", res.Items[0].Name)
	assert.Equal(t, "knots", res.Items[0].Unit)
	assert.Equal(t, simvar.TypeFloat64, res.Items[0].Type)

	ops := mock.OpsOfKind(mocksim.OpVariable)
	require.Len(t, ops, 1)
	assert.Equal(t, "AIRSPEED INDICATED", ops[0].Name)
	assert.Equal(t, simvar.FloatValue(simvar.TypeFloat64, 120), ops[0].Value)
	assert.Equal(t, 1, res.Applied)
	assert.Empty(t, res.Warnings)
}

func TestApplyUnknownVariableDefaults(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "L:MyCustomVar", Unit: "number", Value: "3.5"},
	})
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "L:MyCustomVar", res.Items[0].Name)
	assert.Equal(t, "number", res.Items[0].Unit)
	assert.Equal(t, simvar.TypeFloat64, res.Items[0].Type)
	assert.True(t, res.Items[0].Settable)
	assert.Equal(t, 1, res.Applied)
}

func TestApplyEndToEndInitPosition(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "PLANE LATITUDE", Value: "10"},
		{Name: "PLANE LONGITUDE", Value: "20"},
		{Name: "PLANE ALTITUDE", Value: "1000"},
		{Name: "PLANE PITCH DEGREES", Value: "0"},
		{Name: "PLANE BANK DEGREES", Value: "0"},
		{Name: "PLANE HEADING DEGREES TRUE", Value: "90"},
		{Name: "SIM ON GROUND", Value: "1"},
		{Name: "AIRSPEED TRUE", Value: "150"},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, 0, res.Applied, "composite members do not count as applied items")

	posOps := mock.OpsOfKind(mocksim.OpInitPosition)
	require.Len(t, posOps, 1)
	pos := posOps[0].Pos
	assert.Equal(t, 10.0, pos.Latitude)
	assert.Equal(t, 20.0, pos.Longitude)
	assert.Equal(t, 1000.0, pos.Altitude)
	assert.Equal(t, 90.0, pos.Heading)
	assert.Equal(t, uint32(1), pos.OnGround)
	assert.Equal(t, uint32(0), pos.Airspeed, "on-ground forces airspeed to zero")

	assert.Empty(t, mock.OpsOfKind(mocksim.OpVariable), "no per-item writes expected")
	assert.Empty(t, mock.OpsOfKind(mocksim.OpVelocity))
}

func TestApplyOrderingPositionVelocityRemainder(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	_, err := e.Apply(context.Background(), []Item{
		{Name: "GENERAL ENG COMBUSTION:1", Value: "true"},
		{Name: "VELOCITY WORLD X", Value: "5"},
		{Name: "VELOCITY WORLD Y", Value: "0"},
		{Name: "VELOCITY WORLD Z", Value: "100"},
		{Name: "PLANE LATITUDE", Value: "47.26"},
		{Name: "PLANE ALTITUDE", Value: "5000"},
	})
	require.NoError(t, err)

	ops := mock.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, mocksim.OpInitPosition, ops[0].Kind)
	assert.Equal(t, mocksim.OpVelocity, ops[1].Kind)
	assert.Equal(t, mocksim.OpVariable, ops[2].Kind)

	assert.Equal(t, 5.0, ops[1].X)
	assert.Equal(t, 0.0, ops[1].Y)
	assert.Equal(t, 100.0, ops[1].Z)
}

func TestApplyOnGroundZeroesVelocity(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "SIM ON GROUND", Value: "true"},
		{Name: "PLANE LATITUDE", Value: "1"},
		{Name: "VELOCITY WORLD X", Value: "50"},
		{Name: "VELOCITY WORLD Y", Value: "60"},
		{Name: "VELOCITY WORLD Z", Value: "70"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	velOps := mock.OpsOfKind(mocksim.OpVelocity)
	require.Len(t, velOps, 1)
	assert.Equal(t, 0.0, velOps[0].X)
	assert.Equal(t, 0.0, velOps[0].Y)
	assert.Equal(t, 0.0, velOps[0].Z)
}

func TestApplyPartialVelocityNotTransmitted(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	_, err := e.Apply(context.Background(), []Item{
		{Name: "VELOCITY WORLD X", Value: "5"},
		{Name: "VELOCITY WORLD Z", Value: "100"},
	})
	require.NoError(t, err)
	assert.Empty(t, mock.OpsOfKind(mocksim.OpVelocity))
}

func TestApplyEmptyValueSkipped(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "FLAPS HANDLE INDEX", Value: "   "},
	})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no value stored")
	assert.Equal(t, 0, res.Applied)
	assert.Empty(t, mock.Ops())
}

func TestApplyReadOnlyWarning(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "AVIONICS MASTER SWITCH", Value: "1"},
	})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "not settable")
	assert.Equal(t, 0, res.Applied)
	assert.Empty(t, mock.Ops())
}

func TestApplyParseFailureWarning(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "FLAPS HANDLE INDEX", Value: "lots"},
		{Name: "GEAR HANDLE POSITION", Value: "1"},
	})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "INT32")
	assert.Equal(t, 1, res.Applied, "pass continues after a per-item failure")
}

func TestApplyWriteFailureContinues(t *testing.T) {
	mock := mocksim.NewClient()
	mock.VariableErrs = map[string]error{
		"GEAR HANDLE POSITION": errors.New("sim rejected write"),
	}
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "GEAR HANDLE POSITION", Value: "1"},
		{Name: "LIGHT BEACON", Value: "1"},
	})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "write failed")
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 1, mock.CloseCalls, "disconnect always attempted")
}

func TestApplyConnectFailureIsFatal(t *testing.T) {
	mock := mocksim.NewClient()
	mock.OpenErr = errors.New("sim not running")
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{Name: "LIGHT BEACON", Value: "1"},
	})
	require.Error(t, err)
	assert.Equal(t, 0, res.Applied)
	assert.Empty(t, res.Warnings, "fatal connect yields no warnings, nothing was attempted")
	assert.Empty(t, mock.Ops())
}

func TestApplyDisconnectFailureSwallowed(t *testing.T) {
	mock := mocksim.NewClient()
	mock.CloseErr = errors.New("already gone")
	e := newTestEngine(mock)

	_, err := e.Apply(context.Background(), []Item{
		{Name: "LIGHT BEACON", Value: "1"},
	})
	assert.NoError(t, err)
}

func TestApplyExactMatchMappingNative(t *testing.T) {
	mock := mocksim.NewClient()
	mock.InputEvents = []sim.EventDescriptor{
		{Name: "FUEL_SELECTOR_SET", Hash: 42},
	}
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{
			Name:  "FUEL SELECTOR STATE",
			Value: " ALL ",
			Mappings: []EventMapping{
				{MatchValue: "OFF", EventName: "FUEL_SELECTOR_SET", Param: 0},
				{MatchValue: "all", EventName: "FUEL_SELECTOR_SET", Param: 1},
			},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, res.Applied)

	evOps := mock.OpsOfKind(mocksim.OpInputEvent)
	require.Len(t, evOps, 1)
	assert.Equal(t, uint64(42), evOps[0].Hash)
	assert.Equal(t, 1.0, evOps[0].Param)
	assert.Empty(t, mock.OpsOfKind(mocksim.OpVariable), "event hit skips the direct write")
}

func TestApplyLegacyFallbackMapsOncePerProcess(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	items := []Item{
		{
			Name:  "PARKING BRAKE STATE",
			Value: "1",
			Mappings: []EventMapping{
				{MatchValue: "1", EventName: "PARKING_BRAKES", Param: 0},
			},
		},
	}

	res, err := e.Apply(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)

	// Second pass on the same engine: the cached id is reused, no re-mapping.
	res, err = e.Apply(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)

	mapOps := mock.OpsOfKind(mocksim.OpMapEvent)
	require.Len(t, mapOps, 1)
	assert.Equal(t, uint32(1000), mapOps[0].EventID)
	assert.Equal(t, "PARKING_BRAKES", mapOps[0].EventName)

	txOps := mock.OpsOfKind(mocksim.OpTransmitEvent)
	require.Len(t, txOps, 2)
	assert.Equal(t, uint32(1000), txOps[0].EventID)
	assert.Equal(t, uint32(1000), txOps[1].EventID)
}

func TestApplyLegacyAssociationFailure(t *testing.T) {
	mock := mocksim.NewClient()
	mock.MapErr = errors.New("exception 7")
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{
		{
			Name:     "PARKING BRAKE STATE",
			Value:    "1",
			Settable: true,
			Mappings: []EventMapping{
				{MatchValue: "1", EventName: "PARKING_BRAKES", Param: 0},
			},
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "failed to map client event")
	assert.Empty(t, mock.OpsOfKind(mocksim.OpTransmitEvent))
}

func TestApplyInterpolation(t *testing.T) {
	calibrated := func(m0, m1 EventMapping, value string) []Item {
		return []Item{{
			Name:     "THROTTLE POSITION",
			Unit:     "percent",
			Value:    value,
			Mappings: []EventMapping{m0, m1},
		}}
	}
	low := EventMapping{MatchValue: "0", EventName: "THROTTLE_AXIS_SET", Param: 0}
	high := EventMapping{MatchValue: "100", EventName: "THROTTLE_AXIS_SET", Param: 1}

	tests := []struct {
		name  string
		items []Item
		want  float64
	}{
		{name: "midpoint", items: calibrated(low, high, "25"), want: 0.25},
		{name: "clamp below", items: calibrated(low, high, "-10"), want: 0},
		{name: "clamp above", items: calibrated(low, high, "150"), want: 1},
		{name: "order independent", items: calibrated(high, low, "25"), want: 0.25},
		{name: "percent suffix", items: calibrated(low, high, "25%"), want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := mocksim.NewClient()
			mock.InputEvents = []sim.EventDescriptor{
				{Name: "THROTTLE_AXIS_SET", Hash: 7},
			}
			e := newTestEngine(mock)

			res, err := e.Apply(context.Background(), tt.items)
			require.NoError(t, err)
			assert.Empty(t, res.Warnings)
			assert.Equal(t, 1, res.Applied)

			evOps := mock.OpsOfKind(mocksim.OpInputEvent)
			require.Len(t, evOps, 1)
			assert.Equal(t, uint64(7), evOps[0].Hash)
			assert.InDelta(t, tt.want, evOps[0].Param, 1e-9)
			assert.Empty(t, mock.OpsOfKind(mocksim.OpVariable))
		})
	}
}

func TestApplyExactMatchBeatsInterpolation(t *testing.T) {
	mock := mocksim.NewClient()
	mock.InputEvents = []sim.EventDescriptor{
		{Name: "THROTTLE_AXIS_SET", Hash: 7},
	}
	e := newTestEngine(mock)

	// Value 100 matches the upper calibration row exactly, so the mapping's
	// own parameter is dispatched without running the interpolator.
	res, err := e.Apply(context.Background(), []Item{{
		Name:  "THROTTLE POSITION",
		Unit:  "percent",
		Value: "100",
		Mappings: []EventMapping{
			{MatchValue: "0", EventName: "THROTTLE_AXIS_SET", Param: 0},
			{MatchValue: "100", EventName: "THROTTLE_AXIS_SET", Param: 0.75},
		},
	}})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	evOps := mock.OpsOfKind(mocksim.OpInputEvent)
	require.Len(t, evOps, 1)
	assert.Equal(t, 0.75, evOps[0].Param)
}

func TestApplyInterpolationUnresolvedFallsThrough(t *testing.T) {
	// Event not in the snapshot: interpolation does not qualify and the
	// value is written directly instead.
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{{
		Name:  "SPOILERS HANDLE POSITION",
		Value: "25",
		Mappings: []EventMapping{
			{MatchValue: "0", EventName: "SPOILERS_UNKNOWN", Param: 0},
			{MatchValue: "100", EventName: "SPOILERS_UNKNOWN", Param: 1},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)

	varOps := mock.OpsOfKind(mocksim.OpVariable)
	require.Len(t, varOps, 1)
	assert.Equal(t, "SPOILERS HANDLE POSITION", varOps[0].Name)
	assert.Empty(t, mock.OpsOfKind(mocksim.OpInputEvent))
}

func TestApplyEnumerationFailureDegradesToLegacy(t *testing.T) {
	mock := mocksim.NewClient()
	mock.EnumerateErr = errors.New("request timed out")
	e := newTestEngine(mock)

	res, err := e.Apply(context.Background(), []Item{{
		Name:  "PARKING BRAKE STATE",
		Value: "1",
		Mappings: []EventMapping{
			{MatchValue: "1", EventName: "PARKING_BRAKES", Param: 0},
		},
	}})
	require.NoError(t, err)

	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "enumeration failed")
	assert.Len(t, mock.OpsOfKind(mocksim.OpTransmitEvent), 1)
	assert.Equal(t, 1, res.Applied)
}

func TestApplyPhaseTrace(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	_, err := e.Apply(context.Background(), []Item{
		{Name: "LIGHT BEACON", Value: "1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []Phase{
		PhaseConnecting,
		PhaseNormalizing,
		PhaseApplyingPosition,
		PhaseSettlingDelay,
		PhaseApplyingVelocity,
		PhaseApplyingRemainder,
		PhaseDisconnecting,
		PhaseDone,
	}, e.PhaseTrace())

	mock.OpenErr = errors.New("gone")
	_, err = e.Apply(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, []Phase{PhaseConnecting, PhaseConnectionFailed}, e.PhaseTrace())
}

func TestApplyOneRefusesCompositeMembers(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	for _, name := range []string{"PLANE LATITUDE", "sim on ground", "Velocity World Y", "AIRSPEED TRUE"} {
		_, err := e.ApplyOne(context.Background(), Item{Name: name, Value: "1"})
		assert.ErrorIs(t, err, ErrCompositeMember, name)
	}
	assert.Empty(t, mock.Ops())
}

func TestApplyOneSingleItem(t *testing.T) {
	mock := mocksim.NewClient()
	e := newTestEngine(mock)

	res, err := e.ApplyOne(context.Background(), Item{Name: "LIGHT LANDING", Value: "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Empty(t, res.Warnings)

	varOps := mock.OpsOfKind(mocksim.OpVariable)
	require.Len(t, varOps, 1)
	assert.Equal(t, "LIGHT LANDING", varOps[0].Name)
}
