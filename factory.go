package conveyor

import (
	"context"
	"reflect"

	"github.com/google/uuid"
)

// FactoryID uniquely identifies one staged factory instance. IDs are
// generated at construction and stable for the factory's lifetime; two
// factories are never equal by ID, even if they share a type and stage.
type FactoryID string

// Factory is the unit-of-work contract. The pipeline drives the phases in
// the fixed order Read, Process, Write, then calls Get and deposits the
// result with the dispatcher.
//
// Requirements must be discoverable before execution: the returned slice is
// the factory's static declaration of its injection points and may not
// depend on Read/Process having run.
type Factory interface {
	ID() FactoryID
	Name() string

	// Read loads external state. Opaque to the engine, potentially slow.
	Read(ctx context.Context) error
	// Process computes the factory's output from its injected inputs.
	Process(ctx context.Context) error
	// Write persists side effects. Opaque to the engine, potentially slow.
	Write(ctx context.Context) error

	// Get returns the produced payload. Its dynamic type must be assignable
	// to Output().Type.
	Get() any
	// Output describes the deliverable this factory deposits. A zero-value
	// spec (nil Type) means the factory produces nothing.
	Output() OutputSpec

	// Requirements declares the factory's input dependencies.
	Requirements() []Requirement
}

// OutputSpec describes a factory's produced deliverable: payload type,
// optional delivery ID, optional consumer allow-list.
type OutputSpec struct {
	Type       reflect.Type
	DeliveryID string
	Consumers  []reflect.Type
}

// OutputOption configures an OutputSpec or a caller-registered Deliverable.
type OutputOption func(*OutputSpec)

// WithDeliveryID qualifies the output so consumers can select it by ID.
func WithDeliveryID(id string) OutputOption {
	return func(s *OutputSpec) {
		s.DeliveryID = id
	}
}

// ConsumedBy restricts the output to factories of type F.
func ConsumedBy[F Factory]() OutputOption {
	return func(s *OutputSpec) {
		s.Consumers = append(s.Consumers, indirect(TypeOf[F]()))
	}
}

// Output builds the descriptor for a factory producing T.
func Output[T any](opts ...OutputOption) OutputSpec {
	s := OutputSpec{
		Type:       TypeOf[T](),
		DeliveryID: DefaultDeliveryID,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Equal compares output specs by content.
func (s OutputSpec) Equal(other OutputSpec) bool {
	if s.Type != other.Type || s.DeliveryID != other.DeliveryID || len(s.Consumers) != len(other.Consumers) {
		return false
	}
	for i, c := range s.Consumers {
		if c != other.Consumers[i] {
			return false
		}
	}
	return true
}

// Base provides identity for factory implementations. Embed it and it
// satisfies the ID and Name methods of Factory.
type Base struct {
	id   FactoryID
	name string
}

// NewBase creates a Base with a fresh UUID identity.
func NewBase(name string) Base {
	return Base{id: FactoryID(uuid.NewString()), name: name}
}

func (b *Base) ID() FactoryID { return b.id }
func (b *Base) Name() string { return b.name }

// FactoryType returns the struct type of f, used as its producer identity.
func FactoryType(f Factory) reflect.Type {
	return indirect(reflect.TypeOf(f))
}
