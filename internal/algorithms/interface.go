// Step kinds and the per-kind dispatch table
package algorithms

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"layer-pipeline/internal/vision"
)

var (
	// ErrUnsupportedStepKind is returned when a step kind has no transform.
	ErrUnsupportedStepKind = errors.New("unsupported step kind")
	// ErrInvalidParameter is returned for out-of-domain step or bound parameters.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Kind tags a processing step
type Kind string

const (
	KindColorThreshold Kind = "color_threshold"
	KindCanny          Kind = "canny"
	KindErode          Kind = "erode"
	KindDilate         Kind = "dilate"
	KindOpen           Kind = "open"
	KindClose          Kind = "close"
)

var knownKinds = []Kind{KindColorThreshold, KindCanny, KindErode, KindDilate, KindOpen, KindClose}

// ParseKind maps a configuration string to a Kind
func ParseKind(s string) (Kind, error) {
	for _, k := range knownKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown step kind %q", ErrInvalidParameter, s)
}

// Params is the kind-specific parameter bundle of a step
type Params interface {
	Kind() Kind
	Validate() error
}

// KernelSource resolves named structuring elements
type KernelSource interface {
	Kernel(name string) (Kernel, error)
}

// Env carries the collaborators a handler may use
type Env struct {
	Ops     vision.Ops
	Kernels KernelSource
}

// Handler applies one step kind. The returned Mat is owned by the caller
// and input is left untouched.
type Handler interface {
	Apply(env Env, input gocv.Mat, params Params) (gocv.Mat, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(env Env, input gocv.Mat, params Params) (gocv.Mat, error)

func (f HandlerFunc) Apply(env Env, input gocv.Mat, params Params) (gocv.Mat, error) {
	return f(env, input, params)
}

// Handlers dispatches steps to the handler registered for their kind
type Handlers struct {
	handlers map[Kind]Handler
}

// NewHandlers returns a dispatch table with every kind that has a defined transform.
// Canny is deliberately absent.
func NewHandlers() *Handlers {
	h := &Handlers{handlers: make(map[Kind]Handler)}

	h.Register(KindColorThreshold, HandlerFunc(applyColorThreshold))

	morph := HandlerFunc(applyMorphology)
	h.Register(KindErode, morph)
	h.Register(KindDilate, morph)
	h.Register(KindOpen, morph)
	h.Register(KindClose, morph)

	return h
}

// Register installs or replaces the handler for kind
func (h *Handlers) Register(kind Kind, handler Handler) {
	h.handlers[kind] = handler
}

func (h *Handlers) Supports(kind Kind) bool {
	_, ok := h.handlers[kind]
	return ok
}

// Apply runs the handler for params.Kind()
func (h *Handlers) Apply(env Env, input gocv.Mat, params Params) (gocv.Mat, error) {
	handler, ok := h.handlers[params.Kind()]
	if !ok {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrUnsupportedStepKind, params.Kind())
	}
	if err := params.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	return handler.Apply(env, input, params)
}
