package engine

import (
	"fmt"
	"strings"
	"sync"

	"simsetgo/pkg/sim"
)

// firstClientEventID is the first id handed out for legacy client events.
const firstClientEventID uint32 = 1000

// ClientEventRegistry allocates numeric client-event ids for legacy sim
// events. It is process-lifetime shared state: append-only, ids only grow,
// and a name keeps its id for as long as the process runs so the sim-side
// association happens at most once.
type ClientEventRegistry struct {
	mu   sync.Mutex
	ids  map[string]uint32
	next uint32
}

// NewClientEventRegistry returns an empty registry.
func NewClientEventRegistry() *ClientEventRegistry {
	return &ClientEventRegistry{
		ids:  make(map[string]uint32),
		next: firstClientEventID,
	}
}

// ResolveOrAllocate returns the id for name, allocating a fresh one on first
// sight. isNew tells the caller whether the sim-side mapping still has to be
// requested. Names are case-insensitive.
func (r *ClientEventRegistry) ResolveOrAllocate(name string) (id uint32, isNew bool) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[key]; ok {
		return id, false
	}
	id = r.next
	r.next++
	r.ids[key] = id
	return id, true
}

// Len returns the number of allocated ids.
func (r *ClientEventRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// eventResolver resolves event names for one apply pass. The snapshot of
// native input events is built once per pass; legacy fallbacks go through the
// shared ClientEventRegistry.
type eventResolver struct {
	session  sim.Session
	registry *ClientEventRegistry
	snapshot map[string]sim.EventDescriptor
}

// newEventResolver builds the pass-scoped snapshot from an enumeration.
// Blank names are dropped; on duplicate names the first occurrence wins.
func newEventResolver(session sim.Session, registry *ClientEventRegistry, descriptors []sim.EventDescriptor) *eventResolver {
	snap := make(map[string]sim.EventDescriptor, len(descriptors))
	for _, d := range descriptors {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := snap[key]; !ok {
			snap[key] = d
		}
	}
	return &eventResolver{session: session, registry: registry, snapshot: snap}
}

// lookup finds a native descriptor for the event name.
func (r *eventResolver) lookup(name string) (sim.EventDescriptor, bool) {
	d, ok := r.snapshot[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// dispatch sends the event, preferring the native input event when the name
// is in the snapshot and falling back to a legacy client event otherwise.
// It returns false with a warning when the event could not be sent; it never
// propagates an error past this boundary.
func (r *eventResolver) dispatch(itemName, eventName string, param float64) (bool, string) {
	if d, ok := r.lookup(eventName); ok {
		if err := r.session.SetInputEvent(d.Hash, param); err != nil {
			return false, fmt.Sprintf("%s: failed to send input event %q: %v", itemName, eventName, err)
		}
		return true, ""
	}
	return r.dispatchLegacy(itemName, eventName)
}

// dispatchLegacy transmits eventName as a classic client event. The numeric
// id is associated with the sim-named event the first time the name is seen
// in this process; legacy events carry no payload.
func (r *eventResolver) dispatchLegacy(itemName, eventName string) (bool, string) {
	id, isNew := r.registry.ResolveOrAllocate(eventName)
	if isNew {
		if err := r.session.MapClientEventToSimEvent(id, eventName); err != nil {
			return false, fmt.Sprintf("%s: failed to map client event %q: %v", itemName, eventName, err)
		}
	}
	if err := r.session.TransmitClientEvent(id); err != nil {
		return false, fmt.Sprintf("%s: failed to transmit event %q: %v", itemName, eventName, err)
	}
	return true, ""
}
