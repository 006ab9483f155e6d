package layers

import (
	"fmt"
	"sync"

	"layer-pipeline/internal/algorithms"
)

// KernelSet holds named structuring elements
type KernelSet struct {
	mu      sync.RWMutex
	kernels map[string]algorithms.Kernel
	order   []string
}

func NewKernelSet() *KernelSet {
	return &KernelSet{
		kernels: make(map[string]algorithms.Kernel),
		order:   make([]string, 0),
	}
}

// Add creates a rows x cols all-ones kernel under name
func (ks *KernelSet) Add(name string, rows, cols int) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if existing, exists := ks.kernels[name]; exists {
		r, c := existing.Shape()
		return fmt.Errorf("%w: %q already exists with shape (%d, %d)", ErrDuplicateKernelName, name, r, c)
	}

	k, err := algorithms.NewKernel(name, rows, cols)
	if err != nil {
		return err
	}

	ks.kernels[name] = k
	ks.order = append(ks.order, name)
	return nil
}

// Kernel returns a copy of the named kernel. It satisfies algorithms.KernelSource.
func (ks *KernelSet) Kernel(name string) (algorithms.Kernel, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	k, ok := ks.kernels[name]
	if !ok {
		return algorithms.Kernel{}, fmt.Errorf("%w: %q", ErrKernelNotFound, name)
	}
	return k.Clone(), nil
}

func (ks *KernelSet) Shape(name string) (int, int, error) {
	k, err := ks.Kernel(name)
	if err != nil {
		return 0, 0, err
	}
	rows, cols := k.Shape()
	return rows, cols, nil
}

func (ks *KernelSet) Remove(name string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if _, ok := ks.kernels[name]; !ok {
		return fmt.Errorf("%w: %q", ErrKernelNotFound, name)
	}

	delete(ks.kernels, name)
	for i, n := range ks.order {
		if n == name {
			ks.order = append(ks.order[:i], ks.order[i+1:]...)
			break
		}
	}
	return nil
}

// Names returns kernel names in registration order
func (ks *KernelSet) Names() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	names := make([]string, len(ks.order))
	copy(names, ks.order)
	return names
}
