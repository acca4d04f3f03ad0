package correction

import (
	"fmt"
	"sync"
)

// Pipeline is an ordered chain of correction stages with a per-name enable
// flag. The stage order is fixed at construction; the enabled set is the
// only mutable state and is guarded by a mutex, so one pipeline may be
// toggled while other goroutines call Apply on it. Apply snapshots the
// enabled set at entry and is otherwise a pure function of its inputs.
type Pipeline struct {
	mu      sync.Mutex
	stages  []Stage
	enabled map[string]bool
}

// New builds a pipeline from stages in the given order, all enabled.
// Stage names must be unique and every stage must validate.
func New(stages ...Stage) (*Pipeline, error) {
	enabled := make(map[string]bool, len(stages))

	for _, s := range stages {
		err := s.Validate()
		if err != nil {
			return nil, err
		}

		if _, ok := enabled[s.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStage, s.Name)
		}

		enabled[s.Name] = true
	}

	p := &Pipeline{
		stages:  make([]Stage, len(stages)),
		enabled: enabled,
	}
	copy(p.stages, stages)

	return p, nil
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}

	return names
}

// Stage returns the stage registered under name.
func (p *Pipeline) Stage(name string) (Stage, bool) {
	for _, s := range p.stages {
		if s.Name == name {
			return s, true
		}
	}

	return Stage{}, false
}

// IsEnabled reports whether the named stage is enabled. Unknown names
// report false.
func (p *Pipeline) IsEnabled(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.enabled[name]
}

// SetEnabled toggles one stage by name. It fails with [ErrUnknownStage]
// for a name the pipeline does not contain.
func (p *Pipeline) SetEnabled(name string, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.enabled[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}

	p.enabled[name] = enabled

	return nil
}

// AnyEnabled reports whether at least one stage is enabled.
func (p *Pipeline) AnyEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, on := range p.enabled {
		if on {
			return true
		}
	}

	return false
}

// Apply folds counts through every enabled stage in pipeline order and
// returns a new slice; the caller's arrays are never modified, even when a
// stage fails. With every stage disabled the result is a copy of counts.
// A stage failure is reported with the failing stage's name.
func (p *Pipeline) Apply(wavelengthsNm, counts []float64) ([]float64, error) {
	if len(wavelengthsNm) != len(counts) {
		return nil, ErrLengthMismatch
	}

	active := p.snapshot()

	corrected := make([]float64, len(counts))
	copy(corrected, counts)

	for i, s := range p.stages {
		if !active[i] {
			continue
		}

		next, err := s.Apply(wavelengthsNm, corrected)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", s.Name, err)
		}

		corrected = next
	}

	return corrected, nil
}

// snapshot captures the enabled flags aligned with the stage order.
func (p *Pipeline) snapshot() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	active := make([]bool, len(p.stages))
	for i, s := range p.stages {
		active[i] = p.enabled[s.Name]
	}

	return active
}
