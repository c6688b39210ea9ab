package conveyor

import (
	"fmt"
	"reflect"
)

// Binding is one typed argument slot of an injection point. The setter
// closure is captured by the generic constructor, so injection needs no
// reflection on the receiving factory.
type Binding struct {
	argType reflect.Type
	set     func(any)
}

// Arg binds one argument slot to *into.
func Arg[T any](into *T) Binding {
	return Binding{
		argType: TypeOf[T](),
		set: func(v any) {
			*into = v.(T)
		},
	}
}

// Requirement is a declarative description of one input a factory needs:
// the argument types of an injection point plus the matching qualifiers.
// Requirements are immutable once constructed; the pipeline stamps the
// owning factory ID when the factory is staged.
type Requirement struct {
	owner      FactoryID
	target     string
	bindings   []Binding
	producer   reflect.Type // nil = any producer
	optional   bool
	autoLoad   bool
	condition  string
	deliveryID string
}

// RequirementOption configures a Requirement.
type RequirementOption func(*Requirement)

// Optional marks the requirement as skippable: zero matching deliverables
// leaves the injection point at its default value instead of failing.
func Optional() RequirementOption {
	return func(r *Requirement) {
		r.optional = true
	}
}

// AutoLoad enables selection among multiple candidates. The condition picks
// one candidate by decimal position or by producer type name; an empty or
// unresolvable condition fails with ErrAmbiguousDelivery.
func AutoLoad(condition string) RequirementOption {
	return func(r *Requirement) {
		r.autoLoad = true
		r.condition = condition
	}
}

// WithID restricts matching to deliverables qualified with the given
// delivery ID.
func WithID(id string) RequirementOption {
	return func(r *Requirement) {
		r.deliveryID = id
	}
}

// From restricts matching to deliverables produced by factory type F.
func From[F Factory]() RequirementOption {
	return func(r *Requirement) {
		r.producer = indirect(TypeOf[F]())
	}
}

// FromExternal restricts matching to caller-registered deliverables. It also
// marks the requirement as an external input for DAG inspection.
func FromExternal() RequirementOption {
	return func(r *Requirement) {
		r.producer = ExternalType
	}
}

// Input declares a single-argument injection point writing into *into.
func Input[T any](target string, into *T, opts ...RequirementOption) Requirement {
	return Slot(target, []Binding{Arg(into)}, opts...)
}

// Slot declares a multi-argument injection point. Each binding is resolved
// independently against the dispatcher, in order.
func Slot(target string, bindings []Binding, opts ...RequirementOption) Requirement {
	r := Requirement{
		target:     target,
		bindings:   bindings,
		deliveryID: DefaultDeliveryID,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Owner returns the declaring factory's ID, empty until staged.
func (r Requirement) Owner() FactoryID { return r.owner }

// Target returns the injection point identifier.
func (r Requirement) Target() string { return r.target }

// ArgTypes returns the ordered payload types of the injection point.
func (r Requirement) ArgTypes() []reflect.Type {
	types := make([]reflect.Type, len(r.bindings))
	for i, b := range r.bindings {
		types[i] = b.argType
	}
	return types
}

// Producer returns the producer filter, nil meaning any.
func (r Requirement) Producer() reflect.Type { return r.producer }

// IsOptional reports whether zero matches is tolerated.
func (r Requirement) IsOptional() bool { return r.optional }

// IsAutoLoad reports whether a condition selects among candidates.
func (r Requirement) IsAutoLoad() bool { return r.autoLoad }

// Condition returns the auto-load selection condition.
func (r Requirement) Condition() string { return r.condition }

// DeliveryID returns the qualifier, DefaultDeliveryID if unset.
func (r Requirement) DeliveryID() string { return r.deliveryID }

// External reports whether the requirement must be satisfied from the
// dispatcher rather than by an in-pipeline factory.
func (r Requirement) External() bool { return r.producer == ExternalType }

// WithOwner returns a copy stamped with the declaring factory's ID.
func (r Requirement) WithOwner(id FactoryID) Requirement {
	r.owner = id
	return r
}

// Equal compares the declarative content of two requirements. Binding
// closures are compared by argument type only.
func (r Requirement) Equal(other Requirement) bool {
	if r.owner != other.owner ||
		r.target != other.target ||
		r.producer != other.producer ||
		r.optional != other.optional ||
		r.autoLoad != other.autoLoad ||
		r.condition != other.condition ||
		r.deliveryID != other.deliveryID ||
		len(r.bindings) != len(other.bindings) {
		return false
	}
	for i, b := range r.bindings {
		if b.argType != other.bindings[i].argType {
			return false
		}
	}
	return true
}

func (r Requirement) String() string {
	types := make([]string, len(r.bindings))
	for i, b := range r.bindings {
		types[i] = typeName(b.argType)
	}
	return fmt.Sprintf("Requirement(%s: %v, id=%q, producer=%s)",
		r.target, types, r.deliveryID, typeName(r.producer))
}
