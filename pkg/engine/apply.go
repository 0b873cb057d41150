package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"simsetgo/pkg/sim"
	"simsetgo/pkg/simvar"
)

// DefaultSettleDelay is the pause after a teleport write. The sim needs a
// quiescent period to absorb the new position before further writes stick.
const DefaultSettleDelay = 500 * time.Millisecond

// ErrCompositeMember is returned by ApplyOne for variables that belong to the
// initial-position or world-velocity group; those require the whole group to
// be coherent and can only be applied by a full pass.
var ErrCompositeMember = errors.New("variable belongs to a composite group and cannot be applied alone")

// Result is the outcome of an apply pass.
type Result struct {
	// Applied counts items written successfully (composite members excluded).
	Applied int
	// Warnings collects per-item failures in arrival order. Only a connect
	// failure is fatal; everything else lands here.
	Warnings []string
	// Items is the normalized configuration the pass worked from, so callers
	// can refresh cached display values.
	Items []Item
}

// Options configures an Engine.
type Options struct {
	// Registry resolves variable names to canonical definitions.
	Registry *simvar.Registry
	// ClientEvents is the process-wide legacy event id registry. One instance
	// must be shared across all passes.
	ClientEvents *ClientEventRegistry
	// Sessions produces a fresh session per pass.
	Sessions func() sim.Session
	// SettleDelay overrides DefaultSettleDelay when positive.
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// Engine runs apply passes. A pass is strictly sequential over one session;
// the engine holds no internal mutex, callers must not run two passes at
// once.
type Engine struct {
	registry     *simvar.Registry
	clientEvents *ClientEventRegistry
	sessions     func() sim.Session
	settle       time.Duration
	logger       *slog.Logger

	phase Phase
	trace []Phase
}

// New creates an Engine.
func New(opts Options) *Engine {
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "engine")
	}
	reg := opts.Registry
	if reg == nil {
		reg = simvar.NewRegistry()
	}
	ce := opts.ClientEvents
	if ce == nil {
		ce = NewClientEventRegistry()
	}
	return &Engine{
		registry:     reg,
		clientEvents: ce,
		sessions:     opts.Sessions,
		settle:       settle,
		logger:       logger,
		phase:        PhaseIdle,
	}
}

// PhaseTrace returns the phases traversed by the most recent pass.
func (e *Engine) PhaseTrace() []Phase {
	return append([]Phase(nil), e.trace...)
}

func (e *Engine) setPhase(p Phase) {
	if !CanTransition(e.phase, p) {
		e.logger.Warn("Illegal phase transition", "from", e.phase, "to", p)
	}
	e.phase = p
	e.trace = append(e.trace, p)
	e.logger.Debug("Phase", "phase", p)
}

// Apply runs one full pass over the given items. The only fatal outcome is a
// connect failure: nothing was attempted, no warnings are returned. Every
// other failure is per-item and accumulates as a warning.
func (e *Engine) Apply(ctx context.Context, input []Item) (Result, error) {
	e.trace = e.trace[:0]
	var res Result

	e.setPhase(PhaseConnecting)
	session := e.sessions()
	if err := session.Open(ctx); err != nil {
		e.setPhase(PhaseConnectionFailed)
		return Result{}, fmt.Errorf("failed to connect to simulator: %w", err)
	}

	e.setPhase(PhaseNormalizing)
	items := Normalize(e.registry, input)
	for i := range items {
		if strings.TrimSpace(items[i].Value) == "" {
			items[i].skipped = true
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: no value stored, skipped", items[i].Name))
		}
	}

	var groups compositeBuilder
	res.Warnings = append(res.Warnings, groups.scan(items)...)

	// Teleport first. No other write in the pass may precede the position
	// write and its settle delay.
	e.setPhase(PhaseApplyingPosition)
	settled := false
	if groups.hasPosition() {
		if err := session.SetInitPosition(groups.pos); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("initial position write failed: %v", err))
		} else {
			e.logger.Info("Initial position applied",
				"lat", groups.pos.Latitude, "lon", groups.pos.Longitude,
				"alt", groups.pos.Altitude, "onGround", groups.pos.OnGround)
			settled = true
		}
	}

	e.setPhase(PhaseSettlingDelay)
	cancelled := false
	if settled {
		select {
		case <-time.After(e.settle):
		case <-ctx.Done():
			cancelled = true
			res.Warnings = append(res.Warnings, "apply cancelled, remaining items not applied")
		}
	}

	e.setPhase(PhaseApplyingVelocity)
	if !cancelled && groups.hasVelocity() {
		x, y, z := groups.velocity()
		if err := session.SetWorldVelocity(x, y, z); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("world velocity write failed: %v", err))
		}
	}

	e.setPhase(PhaseApplyingRemainder)
	if !cancelled {
		resolver := e.buildResolver(ctx, session, items, &res)
		for i := range items {
			it := &items[i]
			if it.skipped || it.consumed {
				continue
			}
			if ctx.Err() != nil {
				res.Warnings = append(res.Warnings, "apply cancelled, remaining items not applied")
				break
			}
			applied, warns := e.applyItem(session, resolver, it)
			res.Warnings = append(res.Warnings, warns...)
			if applied {
				res.Applied++
			}
		}
	}

	e.setPhase(PhaseDisconnecting)
	if err := session.Close(); err != nil {
		// Best-effort cleanup; the writes already happened.
		e.logger.Debug("Disconnect failed", "error", err)
	}
	e.setPhase(PhaseDone)

	res.Items = items
	e.logger.Info("Apply pass finished", "applied", res.Applied, "warnings", len(res.Warnings))
	return res, nil
}

// ApplyOne applies a single item with the identical resolution order of a
// full pass. Composite members are refused outright.
func (e *Engine) ApplyOne(ctx context.Context, item Item) (Result, error) {
	normalized := Normalize(e.registry, []Item{item})[0]
	if IsCompositeMember(normalized.Name) {
		return Result{}, fmt.Errorf("%s: %w", normalized.Name, ErrCompositeMember)
	}
	return e.Apply(ctx, []Item{item})
}

// buildResolver enumerates native input events once per pass, but only when
// some surviving item actually carries mappings. An enumeration failure
// degrades to legacy-only resolution with a warning.
func (e *Engine) buildResolver(ctx context.Context, session sim.Session, items []Item, res *Result) *eventResolver {
	needed := false
	for i := range items {
		if items[i].skipped || items[i].consumed {
			continue
		}
		if len(items[i].Mappings) > 0 {
			needed = true
			break
		}
	}
	if !needed {
		return newEventResolver(session, e.clientEvents, nil)
	}

	descriptors, err := session.EnumerateInputEvents(ctx)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("input event enumeration failed: %v", err))
		return newEventResolver(session, e.clientEvents, nil)
	}
	e.logger.Debug("Input events enumerated", "count", len(descriptors))
	return newEventResolver(session, e.clientEvents, descriptors)
}

// applyItem resolves one item: exact-match event mapping, then
// interpolation, then a direct variable write. Panics are converted to
// warnings so a single bad item never aborts the loop.
func (e *Engine) applyItem(session sim.Session, resolver *eventResolver, it *Item) (applied bool, warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			applied = false
			warnings = append(warnings, fmt.Sprintf("%s: internal error: %v", it.Name, r))
		}
	}()

	// 1. Exact-value event mapping.
	if m, ok := matchMapping(it); ok {
		sent, warn := resolver.dispatch(it.Name, m.EventName, m.Param)
		if sent {
			e.logger.Debug("Event mapping applied", "item", it.Name, "event", m.EventName, "param", m.Param)
			return true, warnings
		}
		warnings = append(warnings, warn)
		// fall through: the value may still be writable directly
	}

	// 2. Linear interpolation between two calibration mappings.
	if qualifiesForInterpolation(it) {
		if c, ok := calibration(it); ok {
			if d, ok := resolver.lookup(c.event); ok {
				if v, ok := parsePercent(it.Value); ok {
					param := c.paramFor(v)
					if err := session.SetInputEvent(d.Hash, param); err != nil {
						warnings = append(warnings, fmt.Sprintf("%s: failed to send input event %q: %v", it.Name, c.event, err))
					} else {
						e.logger.Debug("Interpolated event applied", "item", it.Name, "event", c.event, "param", param)
						return true, warnings
					}
				}
			}
		}
	}

	// 3. Read-only variables cannot be written directly.
	if !it.Settable {
		warnings = append(warnings, fmt.Sprintf("%s: variable is not settable, skipped", it.Name))
		return false, warnings
	}

	// 4. Direct variable write.
	v, err := simvar.Parse(it.Value, it.Type)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v", it.Name, err))
		return false, warnings
	}
	if err := session.SetVariable(it.Name, it.Unit, v); err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: write failed: %v", it.Name, err))
		return false, warnings
	}
	e.logger.Debug("Variable applied", "item", it.Name, "unit", it.Unit, "value", it.Value)
	return true, warnings
}
