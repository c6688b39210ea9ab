package conveyor

import (
	"context"
	"errors"
	"strings"
)

// Payload types used across tests.
type rawDoc string
type cookedDoc string

var errBoom = errors.New("boom")

// docSource produces a rawDoc and declares no requirements.
type docSource struct {
	Base
	value rawDoc
	spec  OutputSpec
}

func newDocSource(name string, value rawDoc, opts ...OutputOption) *docSource {
	return &docSource{Base: NewBase(name), value: value, spec: Output[rawDoc](opts...)}
}

func (f *docSource) Read(context.Context) error { return nil }
func (f *docSource) Process(context.Context) error { return nil }
func (f *docSource) Write(context.Context) error { return nil }
func (f *docSource) Get() any { return f.value }
func (f *docSource) Output() OutputSpec { return f.spec }
func (f *docSource) Requirements() []Requirement { return nil }

// altSource also produces rawDoc, from a different factory type, for
// ambiguity and auto-load tests.
type altSource struct {
	Base
	value rawDoc
	spec  OutputSpec
}

func newAltSource(name string, value rawDoc, opts ...OutputOption) *altSource {
	return &altSource{Base: NewBase(name), value: value, spec: Output[rawDoc](opts...)}
}

func (f *altSource) Read(context.Context) error { return nil }
func (f *altSource) Process(context.Context) error { return nil }
func (f *altSource) Write(context.Context) error { return nil }
func (f *altSource) Get() any { return f.value }
func (f *altSource) Output() OutputSpec { return f.spec }
func (f *altSource) Requirements() []Requirement { return nil }

// docCooker consumes a rawDoc and produces its upper-cased cookedDoc.
type docCooker struct {
	Base
	reqOpts []RequirementOption
	in      rawDoc
	out     cookedDoc
}

func newDocCooker(name string, opts ...RequirementOption) *docCooker {
	return &docCooker{Base: NewBase(name), reqOpts: opts}
}

func (f *docCooker) Requirements() []Requirement {
	return []Requirement{Input("in", &f.in, f.reqOpts...)}
}

func (f *docCooker) Read(context.Context) error { return nil }

func (f *docCooker) Process(context.Context) error {
	f.out = cookedDoc(strings.ToUpper(string(f.in)))
	return nil
}

func (f *docCooker) Write(context.Context) error { return nil }
func (f *docCooker) Get() any { return f.out }
func (f *docCooker) Output() OutputSpec { return Output[cookedDoc]() }

// failingFactory fails at the named phase. It produces nothing.
type failingFactory struct {
	Base
	phase string
}

func newFailingFactory(name, phase string) *failingFactory {
	return &failingFactory{Base: NewBase(name), phase: phase}
}

func (f *failingFactory) fail(phase string) error {
	if f.phase == phase {
		return errBoom
	}
	return nil
}

func (f *failingFactory) Read(context.Context) error { return f.fail("read") }
func (f *failingFactory) Process(context.Context) error { return f.fail("process") }
func (f *failingFactory) Write(context.Context) error { return f.fail("write") }
func (f *failingFactory) Get() any { return nil }
func (f *failingFactory) Output() OutputSpec { return OutputSpec{} }
func (f *failingFactory) Requirements() []Requirement { return nil }
