package conveyor

import (
	"fmt"
	"reflect"
)

// External is the reserved producer marker. Deliverables registered by the
// caller (rather than deposited by an in-pipeline factory) carry it as their
// producer, and a requirement built with FromExternal() only accepts such
// deliverables.
type External struct{}

// ExternalType is the reflect.Type of the External marker.
var ExternalType = reflect.TypeOf(External{})

// DefaultDeliveryID is the reserved "no id" sentinel. A requirement carrying
// it matches only deliverables that are not bound to a specific delivery ID.
const DefaultDeliveryID = ""

// TypeOf returns the reflect.Type of T without needing a value of T.
// It works for interface types as well as concrete ones.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Deliverable is an opaque, typed carrier for one payload plus the wiring
// metadata the dispatcher matches on: payload type, producer, consumer
// allow-list and delivery ID.
//
// Deliverables are immutable. Create them with NewDeliverable; the pipeline
// creates them itself when a factory finishes.
type Deliverable struct {
	payload     any
	payloadType reflect.Type
	producer    reflect.Type
	consumers   []reflect.Type
	deliveryID  string
}

// NewDeliverable wraps payload for registration with a dispatcher. The static
// type T is captured as the payload type; the producer is the External
// marker. Use WithDeliveryID and ConsumedBy options to qualify it.
func NewDeliverable[T any](payload T, opts ...OutputOption) Deliverable {
	spec := Output[T](opts...)
	return Deliverable{
		payload:     payload,
		payloadType: spec.Type,
		producer:    ExternalType,
		consumers:   spec.Consumers,
		deliveryID:  spec.DeliveryID,
	}
}

// Payload returns the wrapped value.
func (d Deliverable) Payload() any { return d.payload }

// PayloadType returns the static type captured at construction.
func (d Deliverable) PayloadType() reflect.Type { return d.payloadType }

// Producer returns the factory type that deposited this deliverable, or
// ExternalType for caller-registered ones.
func (d Deliverable) Producer() reflect.Type { return d.producer }

// DeliveryID returns the qualifier, DefaultDeliveryID if unset.
func (d Deliverable) DeliveryID() string { return d.deliveryID }

// Consumers returns the allow-list of factory types. Empty means
// unrestricted.
func (d Deliverable) Consumers() []reflect.Type { return d.consumers }

// External reports whether this deliverable was registered by the caller
// rather than produced by an in-pipeline factory.
func (d Deliverable) External() bool { return d.producer == ExternalType }

func (d Deliverable) String() string {
	return fmt.Sprintf("Deliverable[%s](id=%q, producer=%s)",
		typeName(d.payloadType), d.deliveryID, typeName(d.producer))
}

func (d Deliverable) matchesType(t reflect.Type) bool {
	return d.payloadType == t
}

// matchesProducer applies a requirement's producer filter. A nil filter
// accepts any producer.
func (d Deliverable) matchesProducer(filter reflect.Type) bool {
	return filter == nil || filter == d.producer
}

// matchesDeliveryID applies a requirement's qualifier. The default sentinel
// matches only deliverables not bound to a different qualifier.
func (d Deliverable) matchesDeliveryID(id string) bool {
	return d.deliveryID == id
}

// allowsConsumer checks the allow-list against the requiring factory's type.
func (d Deliverable) allowsConsumer(consumer reflect.Type) bool {
	if len(d.consumers) == 0 {
		return true
	}
	for _, c := range d.consumers {
		if c == consumer {
			return true
		}
	}
	return false
}

// typeName renders a reflect.Type for logs and error messages.
func typeName(t reflect.Type) string {
	switch {
	case t == nil:
		return "any"
	case t == ExternalType:
		return "External"
	case t.Name() != "":
		return t.Name()
	default:
		return t.String()
	}
}

// indirect strips the pointer from factory types so *myFactory and myFactory
// identify the same producer.
func indirect(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
