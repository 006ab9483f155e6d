// Ordered, uniquely named processing steps
package layers

import (
	"errors"
	"fmt"
	"sync"

	"layer-pipeline/internal/algorithms"
)

var (
	ErrDuplicateName       = errors.New("step name already exists")
	ErrNotFound            = errors.New("step not found")
	ErrDuplicateKernelName = errors.New("kernel name already exists")
	ErrKernelNotFound      = errors.New("kernel not found")
)

// Step is one named processing operation
type Step struct {
	Name   string
	Kind   algorithms.Kind
	Params algorithms.Params
}

// Stack keeps steps in registration order, which is also application order
type Stack struct {
	mu    sync.RWMutex
	steps []Step
	index map[string]int
}

func NewStack() *Stack {
	return &Stack{
		steps: make([]Step, 0),
		index: make(map[string]int),
	}
}

// Has reports whether name is registered
func (s *Stack) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[name]
	return ok
}

// Add appends a step. Duplicate names are rejected and leave the stack unchanged.
func (s *Stack) Add(name string, params algorithms.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	s.index[name] = len(s.steps)
	s.steps = append(s.steps, Step{Name: name, Kind: params.Kind(), Params: params})
	return nil
}

// Get returns the step registered under name
func (s *Stack) Get(name string) (Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return Step{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.steps[i], nil
}

// Remove deletes name without disturbing the order of the remaining steps
func (s *Stack) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	s.steps = append(s.steps[:i], s.steps[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.steps); j++ {
		s.index[s.steps[j].Name] = j
	}
	return nil
}

// Names returns the step names in application order
func (s *Stack) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.steps))
	for i, step := range s.steps {
		names[i] = step.Name
	}
	return names
}

// Steps returns a snapshot of all steps
func (s *Stack) Steps() []Step {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Step, len(s.steps))
	copy(result, s.steps)
	return result
}

func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.steps)
}
