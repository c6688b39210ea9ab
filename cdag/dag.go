package cdag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowmatic/conveyor"
	"go.uber.org/multierr"
)

// Sentinel errors for inspection failures.
var (
	ErrNotInspected = errors.New("cdag: pipeline not inspected")
	ErrInvalidFlow  = errors.New("cdag: invalid flow")
	ErrUnknownNode  = errors.New("cdag: flow endpoint not in node set")
)

// DAG is the node/flow snapshot of one pipeline. Nodes are unique by factory
// ID and ordered by stage rank then declaration order; flows are ordered by
// construction (internal first, then external).
type DAG struct {
	Nodes []*Node
	Flows []Flow
}

// Validate checks the structural invariants: every internal flow points from
// a strictly lower to a strictly higher stage, and every flow endpoint is a
// member of the node set (or the External sentinel). All violations are
// reported, combined with multierr.
func (d *DAG) Validate() error {
	members := make(map[conveyor.FactoryID]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		members[n.FactoryID] = struct{}{}
	}

	var err error
	for _, flow := range d.Flows {
		if !flow.External() && flow.From.Stage >= flow.To.Stage {
			err = multierr.Append(err, fmt.Errorf("%w: %s does not satisfy from.stage < to.stage", ErrInvalidFlow, flow))
		}
		if !flow.External() {
			if _, ok := members[flow.From.FactoryID]; !ok {
				err = multierr.Append(err, fmt.Errorf("%w: from side of %s", ErrUnknownNode, flow))
			}
		}
		if _, ok := members[flow.To.FactoryID]; !ok {
			err = multierr.Append(err, fmt.Errorf("%w: to side of %s", ErrUnknownNode, flow))
		}
	}
	return err
}

// Equal compares two DAGs as content-equal node and flow multisets,
// independent of ordering. Duplicate elements count: each element of one side
// claims exactly one unclaimed match on the other.
func (d *DAG) Equal(other *DAG) bool {
	if len(d.Nodes) != len(other.Nodes) || len(d.Flows) != len(other.Flows) {
		return false
	}
	claimedNodes := make([]bool, len(other.Nodes))
	for _, n := range d.Nodes {
		if !claimNode(other.Nodes, claimedNodes, n) {
			return false
		}
	}
	claimedFlows := make([]bool, len(other.Flows))
	for _, f := range d.Flows {
		if !claimFlow(other.Flows, claimedFlows, f) {
			return false
		}
	}
	return true
}

func claimNode(nodes []*Node, claimed []bool, node *Node) bool {
	for i, n := range nodes {
		if !claimed[i] && n.Equal(node) {
			claimed[i] = true
			return true
		}
	}
	return false
}

func claimFlow(flows []Flow, claimed []bool, flow Flow) bool {
	for i, f := range flows {
		if !claimed[i] && f.Equal(flow) {
			claimed[i] = true
			return true
		}
	}
	return false
}

// Describe renders the human-readable node/flow summary.
func (d *DAG) Describe() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("DAG: %d nodes, %d flows\n", len(d.Nodes), len(d.Flows)))
	for _, n := range d.Nodes {
		b.WriteString(n.String())
		b.WriteString("\n")
	}
	for _, f := range d.Flows {
		b.WriteString(f.String())
		b.WriteString("\n")
	}
	return b.String()
}
