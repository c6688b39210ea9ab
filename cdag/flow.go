package cdag

import (
	"fmt"
	"reflect"
)

// Flow is one matched producer-to-consumer edge, labeled with the payload
// type and delivery ID it carries. Internal flows satisfy
// From.Stage < To.Stage; external flows originate at the External node.
type Flow struct {
	From *Node
	To   *Node

	PayloadType reflect.Type
	DeliveryID  string
}

// Stage returns the producing side's rank, ExternalStage for external flows.
func (f Flow) Stage() int {
	return f.From.Stage
}

// External reports whether the flow originates at the External node.
func (f Flow) External() bool {
	return f.From.External()
}

// Equal compares flows by content.
func (f Flow) Equal(other Flow) bool {
	return f.From.Equal(other.From) &&
		f.To.Equal(other.To) &&
		f.PayloadType == other.PayloadType &&
		f.DeliveryID == other.DeliveryID
}

func (f Flow) String() string {
	return fmt.Sprintf("Flow(%s -> %s, stage=%d, payload=%s, id=%q)",
		f.From.FactoryName, f.To.FactoryName, f.Stage(), typeName(f.PayloadType), f.DeliveryID)
}
