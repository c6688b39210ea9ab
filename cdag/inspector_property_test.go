package cdag

import (
	"fmt"
	"testing"

	"github.com/flowmatic/conveyor"
	"pgregory.net/rapid"
)

// Random pipelines draw factories from a small pool of payload types so
// collisions (and therefore flows) actually happen.
func randomFactory(t *rapid.T, name string) *testFactory {
	produces := rapid.IntRange(0, 3).Draw(t, "produces")
	requires := rapid.IntRange(0, 3).Draw(t, "requires")
	external := rapid.Bool().Draw(t, "external")

	var spec conveyor.OutputSpec
	switch produces {
	case 0:
		spec = conveyor.Output[rawDoc]()
	case 1:
		spec = conveyor.Output[cookedDoc]()
	case 2:
		spec = conveyor.Output[indexedDoc]()
	default:
		// produces nothing
	}

	var opts []conveyor.RequirementOption
	if external {
		opts = append(opts, conveyor.FromExternal())
	}
	var reqs []conveyor.Requirement
	switch requires {
	case 0:
		reqs = append(reqs, conveyor.Input("in", new(rawDoc), opts...))
	case 1:
		reqs = append(reqs, conveyor.Input("in", new(cookedDoc), opts...))
	case 2:
		reqs = append(reqs, conveyor.Input("in", new(indexedDoc), opts...))
	default:
		// requires nothing
	}

	return newTestFactory(name, spec, reqs...)
}

func randomPipeline(t *rapid.T) *conveyor.Pipeline {
	p := conveyor.New(conveyor.NewDispatcher())
	numStages := rapid.IntRange(1, 5).Draw(t, "stages")
	for s := 0; s < numStages; s++ {
		end := rapid.Bool().Draw(t, fmt.Sprintf("end-%d", s))
		numFactories := rapid.IntRange(1, 4).Draw(t, fmt.Sprintf("factories-%d", s))
		factories := make([]conveyor.Factory, numFactories)
		for f := 0; f < numFactories; f++ {
			factories[f] = randomFactory(t, fmt.Sprintf("f-%d-%d", s, f))
		}
		if end {
			p.MustAddEndStage(factories...)
		} else {
			p.MustAddStage(factories...)
		}
	}
	return p
}

func TestInspectProperties(t *testing.T) {
	t.Run("internal flows always ascend stages", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			dag := mustInspect(randomPipeline(t))
			for _, flow := range dag.Flows {
				if flow.External() {
					if flow.Stage() != ExternalStage {
						t.Fatalf("external flow %s has stage %d", flow, flow.Stage())
					}
					continue
				}
				if flow.From.Stage >= flow.To.Stage {
					t.Fatalf("flow %s violates from.stage < to.stage", flow)
				}
			}
		})
	})

	t.Run("node ranks equal stage append order", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			p := randomPipeline(t)
			dag := mustInspect(p)

			i := 0
			for rank, stage := range p.Stages() {
				for range stage.Factories() {
					if dag.Nodes[i].Stage != rank {
						t.Fatalf("node %d has stage %d, want %d", i, dag.Nodes[i].Stage, rank)
					}
					i++
				}
			}
		})
	})

	t.Run("inspection is idempotent", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			p := randomPipeline(t)
			if !mustInspect(p).Equal(mustInspect(p)) {
				t.Fatalf("two inspections of an unchanged pipeline differ")
			}
		})
	})
}
