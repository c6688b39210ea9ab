package conveyor

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"sync"
)

// Role namespaces dispatcher keys so the same logical ID can independently
// identify semantically different shelves, e.g. a raw-storage connector and
// the repository built on it.
type Role string

const (
	RoleDeliverable Role = "deliverable"
	RoleConnector   Role = "connector"
	RoleRepository  Role = "repository"
)

// Key builds the namespaced dispatcher key for a logical ID.
func Key(role Role, id string) string {
	return string(role) + ":" + id
}

// Dispatcher is the shared, keyed store of deliverables. It is created per
// run and passed explicitly; there is no ambient global registry.
//
// All methods are safe for concurrent use: the backing map is guarded by a
// single RWMutex, which is the only locking a concurrent-stage run needs.
type Dispatcher struct {
	mu    sync.RWMutex
	shelf map[string]Deliverable
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		shelf: make(map[string]Deliverable),
	}
}

// Put stores d under key, atomically replacing any previous value.
func (d *Dispatcher) Put(key string, del Deliverable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shelf[key] = del
}

// Get returns the deliverable stored under key, or ErrNotFound.
func (d *Dispatcher) Get(key string) (Deliverable, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	del, ok := d.shelf[key]
	if !ok {
		return Deliverable{}, fmt.Errorf("%w: key %q", ErrNotFound, key)
	}
	return del, nil
}

// Register stores del under its derived deliverable key. The pipeline calls
// this to deposit factory outputs; callers use it to pre-register external
// inputs.
func (d *Dispatcher) Register(del Deliverable) {
	d.Put(deliverableKey(del), del)
}

// Reset clears the store.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shelf = make(map[string]Deliverable)
}

// Keys returns all stored keys in sorted order.
func (d *Dispatcher) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sortedKeysLocked()
}

func (d *Dispatcher) sortedKeysLocked() []string {
	keys := make([]string, 0, len(d.shelf))
	for key := range d.shelf {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// deliverableKey derives the storage key for a deposited deliverable.
// Producer identity is part of the key so multiple factories producing the
// same type coexist for auto-load selection.
func deliverableKey(del Deliverable) string {
	id := fmt.Sprintf("%s#%s@%s", typeKey(del.payloadType), del.deliveryID, typeKey(del.producer))
	return Key(RoleDeliverable, id)
}

// typeKey renders a reflect.Type with full package paths so deliverables of
// same-named types from different packages never share a key. typeName stays
// lossy on purpose for logs; this must not be.
func typeKey(t reflect.Type) string {
	switch {
	case t == nil:
		return "any"
	case t.Name() != "":
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeKey(t.Elem())
	case reflect.Slice:
		return "[]" + typeKey(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), typeKey(t.Elem()))
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", typeKey(t.Key()), typeKey(t.Elem()))
	case reflect.Chan:
		return "chan " + typeKey(t.Elem())
	default:
		return t.String()
	}
}

// Resolve returns every stored deliverable matching req for the given
// consumer factory type: payload type in the requirement's arg types,
// producer filter satisfied, delivery IDs matching, and the consumer
// allowed. Results are in deterministic key order.
func (d *Dispatcher) Resolve(req Requirement, consumer reflect.Type) []Deliverable {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Deliverable
	for _, key := range d.sortedKeysLocked() {
		del := d.shelf[key]
		if !slices.Contains(req.ArgTypes(), del.payloadType) {
			continue
		}
		if d.matchesLocked(del, req, del.payloadType, consumer) {
			out = append(out, del)
		}
	}
	return out
}

// Inject resolves every argument slot of req and binds the selected payloads
// into the consumer. Resolution policy per slot:
//
//	zero candidates: skip if optional, else ErrUnsatisfiedDelivery
//	one candidate:   bind it
//	many candidates: auto-load condition selects one, else ErrAmbiguousDelivery
func (d *Dispatcher) Inject(req Requirement, consumer reflect.Type) error {
	for _, binding := range req.bindings {
		candidates := d.resolveArg(req, binding.argType, consumer)
		switch len(candidates) {
		case 0:
			if req.optional {
				continue
			}
			return fmt.Errorf("%w: no deliverable of type %s (id %q, producer %s) for target %s",
				ErrUnsatisfiedDelivery, typeName(binding.argType), req.deliveryID,
				typeName(req.producer), req.target)
		case 1:
			binding.set(candidates[0].payload)
		default:
			selected, err := selectCandidate(req, binding.argType, candidates)
			if err != nil {
				return err
			}
			binding.set(selected.payload)
		}
	}
	return nil
}

func (d *Dispatcher) resolveArg(req Requirement, argType reflect.Type, consumer reflect.Type) []Deliverable {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Deliverable
	for _, key := range d.sortedKeysLocked() {
		del := d.shelf[key]
		if d.matchesLocked(del, req, argType, consumer) {
			out = append(out, del)
		}
	}
	return out
}

func (d *Dispatcher) matchesLocked(del Deliverable, req Requirement, argType reflect.Type, consumer reflect.Type) bool {
	return del.matchesType(argType) &&
		del.matchesProducer(req.producer) &&
		del.matchesDeliveryID(req.deliveryID) &&
		del.allowsConsumer(consumer)
}

// selectCandidate applies the auto-load condition to a multi-candidate
// resolution. The condition is either a decimal position into the candidate
// list or a producer type name.
func selectCandidate(req Requirement, argType reflect.Type, candidates []Deliverable) (Deliverable, error) {
	if !req.autoLoad || req.condition == "" {
		return Deliverable{}, fmt.Errorf("%w: %d deliverables of type %s match target %s and no condition selects one",
			ErrAmbiguousDelivery, len(candidates), typeName(argType), req.target)
	}

	if idx, err := strconv.Atoi(req.condition); err == nil {
		if idx < 0 || idx >= len(candidates) {
			return Deliverable{}, fmt.Errorf("%w: condition %q out of range for %d deliverables of type %s",
				ErrAmbiguousDelivery, req.condition, len(candidates), typeName(argType))
		}
		return candidates[idx], nil
	}

	var matched []Deliverable
	for _, del := range candidates {
		if typeName(del.producer) == req.condition {
			matched = append(matched, del)
		}
	}
	if len(matched) != 1 {
		return Deliverable{}, fmt.Errorf("%w: condition %q selects %d of %d deliverables of type %s",
			ErrAmbiguousDelivery, req.condition, len(matched), len(candidates), typeName(argType))
	}
	return matched[0], nil
}
