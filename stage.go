package conveyor

// Stage is an ordered, logically-parallel group of factories sharing one
// execution rank. Factories within a stage must not depend on each other.
// Stages are immutable once appended to a pipeline.
type Stage struct {
	rank      int
	factories []Factory
	end       bool
}

// Rank returns the stage's 0-indexed position in the pipeline.
func (s *Stage) Rank() int { return s.rank }

// Factories returns the stage's factories in their declared order.
func (s *Stage) Factories() []Factory { return s.factories }

// End reports whether the stage is terminal: its outputs are still deposited
// at run time, but the inspector computes no internal flows out of it.
func (s *Stage) End() bool { return s.end }
