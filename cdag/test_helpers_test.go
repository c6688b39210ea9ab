package cdag

import (
	"context"

	"github.com/flowmatic/conveyor"
)

// Payload types used across tests.
type rawDoc string
type cookedDoc string
type indexedDoc string

// testFactory is a configurable factory: output spec and requirements are
// supplied at construction, the phases are no-ops.
type testFactory struct {
	conveyor.Base
	spec conveyor.OutputSpec
	reqs []conveyor.Requirement
}

func newTestFactory(name string, spec conveyor.OutputSpec, reqs ...conveyor.Requirement) *testFactory {
	return &testFactory{Base: conveyor.NewBase(name), spec: spec, reqs: reqs}
}

func (f *testFactory) Read(context.Context) error { return nil }
func (f *testFactory) Process(context.Context) error { return nil }
func (f *testFactory) Write(context.Context) error { return nil }
func (f *testFactory) Get() any { return nil }
func (f *testFactory) Output() conveyor.OutputSpec { return f.spec }
func (f *testFactory) Requirements() []conveyor.Requirement { return f.reqs }

func producerOf[T any](name string, opts ...conveyor.OutputOption) *testFactory {
	return newTestFactory(name, conveyor.Output[T](opts...))
}

func consumerOf[T any](name string, opts ...conveyor.RequirementOption) *testFactory {
	return newTestFactory(name, conveyor.OutputSpec{}, conveyor.Input("in", new(T), opts...))
}

func mustInspect(p *conveyor.Pipeline) *DAG {
	inspector := NewInspector(p)
	if err := inspector.Inspect(); err != nil {
		panic(err)
	}
	dag, err := inspector.DAG()
	if err != nil {
		panic(err)
	}
	return dag
}

func internalFlowsOf(dag *DAG) []Flow {
	var flows []Flow
	for _, f := range dag.Flows {
		if !f.External() {
			flows = append(flows, f)
		}
	}
	return flows
}

func externalFlowsOf(dag *DAG) []Flow {
	var flows []Flow
	for _, f := range dag.Flows {
		if f.External() {
			flows = append(flows, f)
		}
	}
	return flows
}
