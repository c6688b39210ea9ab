package conveyor

import "github.com/go-logr/logr"

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogr sets the logger for pipeline execution. The default discards all
// output.
var WithLogr = func(log logr.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithStageConcurrency sets how many factories of one stage may run at once.
// The default of 1 preserves the sequential reference behavior. Values above
// 1 are safe because factories within a stage may not depend on each other
// and the dispatcher serializes its own access.
var WithStageConcurrency = func(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.stageConcurrency = n
		}
	}
}
