package conveyor

import "errors"

// Sentinel errors for wiring and resolution failures. All are returned
// wrapped, check with errors.Is().
var (
	// ErrUnsatisfiedDelivery is returned when a required (non-optional)
	// delivery has zero matching deliverables at resolution time.
	ErrUnsatisfiedDelivery = errors.New("conveyor: unsatisfied delivery")

	// ErrAmbiguousDelivery is returned when more than one deliverable matches
	// a requirement and no selection rule disambiguates it.
	ErrAmbiguousDelivery = errors.New("conveyor: ambiguous delivery")

	// ErrDuplicateFactory is returned when a factory ID is staged twice.
	ErrDuplicateFactory = errors.New("conveyor: duplicate factory")

	// ErrNotFound is returned by direct dispatcher lookups with no stored value.
	ErrNotFound = errors.New("conveyor: deliverable not found")
)
