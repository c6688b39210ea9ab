package cdag

import (
	"reflect"

	"github.com/flowmatic/conveyor"
	"github.com/go-logr/logr"
)

// Inspector builds the DAG snapshot of a pipeline. It starts uninspected;
// querying the DAG before Inspect fails with ErrNotInspected. Re-inspection
// replaces the cached DAG and is idempotent: an unchanged pipeline yields a
// content-equal snapshot.
type Inspector struct {
	pipeline *conveyor.Pipeline
	log      logr.Logger
	dag      *DAG
}

// InspectorOption configures an Inspector.
type InspectorOption func(*Inspector)

// WithLogr sets the inspection logger. The default discards all output.
func WithLogr(log logr.Logger) InspectorOption {
	return func(i *Inspector) {
		i.log = log
	}
}

// NewInspector creates an inspector for the given pipeline.
func NewInspector(pipeline *conveyor.Pipeline, opts ...InspectorOption) *Inspector {
	i := &Inspector{
		pipeline: pipeline,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect materializes the DAG: nodes first, then internal flows, then
// external flows, then validation. On success the DAG is cached until the
// next Inspect call.
func (i *Inspector) Inspect() error {
	nodes := i.buildNodes()
	flows := i.internalFlows(nodes)
	flows = append(flows, externalFlows(nodes, flows)...)

	dag := &DAG{Nodes: nodes, Flows: flows}
	if err := dag.Validate(); err != nil {
		return err
	}

	i.log.Info("pipeline inspected", "nodes", len(nodes), "flows", len(flows))
	i.dag = dag
	return nil
}

// DAG returns the cached snapshot, or ErrNotInspected before the first
// successful Inspect.
func (i *Inspector) DAG() (*DAG, error) {
	if i.dag == nil {
		return nil, ErrNotInspected
	}
	return i.dag, nil
}

// Describe renders the cached DAG's summary, or fails with ErrNotInspected.
func (i *Inspector) Describe() (string, error) {
	dag, err := i.DAG()
	if err != nil {
		return "", err
	}
	return dag.Describe(), nil
}

func (i *Inspector) buildNodes() []*Node {
	var nodes []*Node
	for _, stage := range i.pipeline.Stages() {
		for _, f := range stage.Factories() {
			nodes = append(nodes, newNode(f, stage.Rank()))
		}
	}
	return nodes
}

// internalFlows performs the pairwise scan: for every factory of every
// non-end stage, every node of strictly higher rank gets one flow per
// requirement argument matching the factory's output on payload type and
// delivery ID. Producer filters deliberately play no role here; they affect
// runtime resolution only, not topology.
//
// O(nodes^2) in the worst case, which is fine for pipelines of dozens of
// factories. TODO: index candidate nodes by payload type if stage counts
// ever grow past that.
func (i *Inspector) internalFlows(nodes []*Node) []Flow {
	byID := make(map[conveyor.FactoryID]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.FactoryID] = n
	}

	var flows []Flow
	for _, stage := range i.pipeline.Stages() {
		if stage.End() {
			continue
		}
		for _, f := range stage.Factories() {
			from := byID[f.ID()]
			if from.Output.Type == nil {
				continue
			}
			for _, to := range nodes {
				if to.Stage <= from.Stage {
					continue
				}
				for _, req := range to.Input {
					for _, argType := range req.ArgTypes() {
						if argType == from.Output.Type && req.DeliveryID() == from.Output.DeliveryID {
							flows = append(flows, Flow{
								From:        from,
								To:          to,
								PayloadType: argType,
								DeliveryID:  from.Output.DeliveryID,
							})
						}
					}
				}
			}
		}
	}
	return flows
}

// externalFlows synthesizes a flow from the External node for every
// requirement argument declared external, unless an internal flow already
// supplies the same payload type to the same consumer. The suppression test
// matches on type and consumer only, not delivery ID.
func externalFlows(nodes []*Node, internal []Flow) []Flow {
	external := ExternalNode()

	var flows []Flow
	for _, n := range nodes {
		for _, req := range n.Input {
			if !req.External() {
				continue
			}
			for _, argType := range req.ArgTypes() {
				if suppliedInternally(internal, n, argType) {
					continue
				}
				flows = append(flows, Flow{
					From:        external,
					To:          n,
					PayloadType: argType,
					DeliveryID:  req.DeliveryID(),
				})
			}
		}
	}
	return flows
}

func suppliedInternally(internal []Flow, to *Node, payloadType reflect.Type) bool {
	for _, f := range internal {
		if f.To.FactoryID == to.FactoryID && f.PayloadType == payloadType {
			return true
		}
	}
	return false
}
