package cdag

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/flowmatic/conveyor"
)

// ExternalStage is the rank of the synthetic External node.
const ExternalStage = -1

// Output describes a node's produced deliverable.
type Output struct {
	Type       reflect.Type
	DeliveryID string
	Consumers  []reflect.Type
}

// Node wraps one staged factory with its resolved input/output metadata and
// stage rank. Nodes are immutable snapshots, discarded and rebuilt on each
// inspection.
type Node struct {
	FactoryID   conveyor.FactoryID
	FactoryName string
	FactoryType reflect.Type
	Stage       int
	Input       []conveyor.Requirement
	Output      Output
}

// ExternalNode returns the synthetic node standing in for any requirement
// satisfied directly from the dispatcher rather than by an in-pipeline
// factory.
func ExternalNode() *Node {
	return &Node{
		FactoryName: "External",
		FactoryType: conveyor.ExternalType,
		Stage:       ExternalStage,
	}
}

func newNode(f conveyor.Factory, rank int) *Node {
	reqs := f.Requirements()
	input := make([]conveyor.Requirement, len(reqs))
	for i, req := range reqs {
		input[i] = req.WithOwner(f.ID())
	}

	spec := f.Output()
	return &Node{
		FactoryID:   f.ID(),
		FactoryName: f.Name(),
		FactoryType: conveyor.FactoryType(f),
		Stage:       rank,
		Input:       input,
		Output: Output{
			Type:       spec.Type,
			DeliveryID: spec.DeliveryID,
			Consumers:  spec.Consumers,
		},
	}
}

// External reports whether n is the synthetic External node.
func (n *Node) External() bool {
	return n.Stage == ExternalStage
}

// Equal compares nodes by content, not identity.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.FactoryID != other.FactoryID ||
		n.FactoryName != other.FactoryName ||
		n.FactoryType != other.FactoryType ||
		n.Stage != other.Stage ||
		n.Output.Type != other.Output.Type ||
		n.Output.DeliveryID != other.Output.DeliveryID ||
		len(n.Output.Consumers) != len(other.Output.Consumers) ||
		len(n.Input) != len(other.Input) {
		return false
	}
	for i, c := range n.Output.Consumers {
		if c != other.Output.Consumers[i] {
			return false
		}
	}
	for i, req := range n.Input {
		if !req.Equal(other.Input[i]) {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	inputs := make([]string, 0, len(n.Input))
	for _, req := range n.Input {
		for _, t := range req.ArgTypes() {
			inputs = append(inputs, typeName(t))
		}
	}
	output := "none"
	if n.Output.Type != nil {
		output = typeName(n.Output.Type)
		if n.Output.DeliveryID != conveyor.DefaultDeliveryID {
			output = fmt.Sprintf("%s (id %q)", output, n.Output.DeliveryID)
		}
	}
	return fmt.Sprintf("Node(%s, stage=%d, input=[%s], output=%s)",
		n.FactoryName, n.Stage, strings.Join(inputs, ", "), output)
}

// typeName renders a reflect.Type for summaries and diagram labels.
func typeName(t reflect.Type) string {
	switch {
	case t == nil:
		return "any"
	case t == conveyor.ExternalType:
		return "External"
	case t.Name() != "":
		return t.Name()
	default:
		return t.String()
	}
}
