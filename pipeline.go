// Package conveyor assembles batch data-processing applications from
// independently-written factories. A dispatcher matches typed outputs to
// typed inputs at wiring time, a pipeline orders factories into execution
// stages, and the cdag subpackage materializes the resulting graph of data
// flows for validation and export.
package conveyor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// Pipeline is an ordered sequence of stages bound to one dispatcher. One
// pipeline instance drives exactly one linear run to completion or failure;
// it is not designed for reuse across unrelated concurrent runs.
//
// IMPORTANT: Pipeline construction is NOT safe for concurrent use. All
// AddStage calls must happen from a single goroutine before Run.
type Pipeline struct {
	dispatcher *Dispatcher
	stages     []*Stage
	staged     map[FactoryID]struct{}

	log              logr.Logger
	stageConcurrency int
}

// New creates a pipeline bound to the given dispatcher.
func New(dispatcher *Dispatcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		dispatcher:       dispatcher,
		staged:           make(map[FactoryID]struct{}),
		log:              logr.Discard(),
		stageConcurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatcher returns the pipeline's dispatcher.
func (p *Pipeline) Dispatcher() *Dispatcher { return p.dispatcher }

// Stages returns the appended stages in rank order.
func (p *Pipeline) Stages() []*Stage { return p.stages }

// AddStage appends a new stage at the next rank. Fails with
// ErrDuplicateFactory if a factory ID is already staged.
func (p *Pipeline) AddStage(factories ...Factory) error {
	return p.addStage(false, factories)
}

// AddEndStage appends a terminal stage: its outputs are deposited at run
// time but not considered producers for later stages during inspection.
func (p *Pipeline) AddEndStage(factories ...Factory) error {
	return p.addStage(true, factories)
}

// MustAddStage is like AddStage but panics on error and returns the pipeline
// for chaining.
func (p *Pipeline) MustAddStage(factories ...Factory) *Pipeline {
	if err := p.AddStage(factories...); err != nil {
		panic(err)
	}
	return p
}

// MustAddEndStage is like AddEndStage but panics on error and returns the
// pipeline for chaining.
func (p *Pipeline) MustAddEndStage(factories ...Factory) *Pipeline {
	if err := p.AddEndStage(factories...); err != nil {
		panic(err)
	}
	return p
}

func (p *Pipeline) addStage(end bool, factories []Factory) error {
	for _, f := range factories {
		if _, ok := p.staged[f.ID()]; ok {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicateFactory, f.Name(), f.ID())
		}
		p.staged[f.ID()] = struct{}{}
	}
	p.stages = append(p.stages, &Stage{
		rank:      len(p.stages),
		factories: factories,
		end:       end,
	})
	return nil
}

// Run executes stages in rank order. For each factory: every declared
// requirement is resolved from the dispatcher and injected, the phases run
// as Read, Process, Write, and the Get result is deposited back so later
// stages can consume it.
//
// The first error aborts the run. Deliverables deposited by already-completed
// factories remain visible; re-runs are expected to be idempotent at the
// factory level, which is the factory author's concern.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	for _, stage := range p.stages {
		if err := p.runStage(ctx, stage); err != nil {
			return err
		}
	}
	p.log.Info("pipeline finished", "stages", len(p.stages), "took", time.Since(start))
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, stage *Stage) error {
	p.log.Info("running stage", "rank", stage.rank, "factories", len(stage.factories), "end", stage.end)

	// Factories within a stage must not depend on each other, and the
	// dispatcher serializes its own access, so running them on an errgroup
	// needs no further coordination.
	if p.stageConcurrency > 1 {
		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(p.stageConcurrency)
		for _, f := range stage.factories {
			f := f
			grp.Go(func() error {
				return p.runFactory(gctx, f)
			})
		}
		return grp.Wait()
	}

	for _, f := range stage.factories {
		if err := p.runFactory(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runFactory(ctx context.Context, f Factory) error {
	consumer := FactoryType(f)

	for _, req := range f.Requirements() {
		req = req.WithOwner(f.ID())
		if err := p.dispatcher.Inject(req, consumer); err != nil {
			return fmt.Errorf("inject %s into factory %s: %w", req.Target(), f.Name(), err)
		}
	}

	start := time.Now()
	if err := f.Read(ctx); err != nil {
		return fmt.Errorf("factory %s: read: %w", f.Name(), err)
	}
	if err := f.Process(ctx); err != nil {
		return fmt.Errorf("factory %s: process: %w", f.Name(), err)
	}
	if err := f.Write(ctx); err != nil {
		return fmt.Errorf("factory %s: write: %w", f.Name(), err)
	}

	if out := f.Output(); out.Type != nil {
		p.dispatcher.Register(Deliverable{
			payload:     f.Get(),
			payloadType: out.Type,
			producer:    consumer,
			consumers:   out.Consumers,
			deliveryID:  out.DeliveryID,
		})
	}

	p.log.Info("factory finished", "factory", f.Name(), "took", time.Since(start))
	return nil
}
