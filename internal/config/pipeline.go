package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"layer-pipeline/internal/algorithms"
	"layer-pipeline/internal/vision"
)

const (
	defaultCannyThreshold1 = 100
	defaultCannyThreshold2 = 200
)

// PipelineFile is the decoded form of a pipeline definition:
//
//	kernel "square" {
//	  width  = 3
//	  height = 3
//	}
//
//	step "color_threshold" "skin" {
//	  rgb    = [224, 172, 105]
//	  factor = 60
//	}
//
//	step "erode" "clean" {
//	  kernel     = "square"
//	  iterations = 2
//	}
type PipelineFile struct {
	Kernels []*KernelBlock `hcl:"kernel,block"`
	Steps   []*StepBlock   `hcl:"step,block"`
}

type KernelBlock struct {
	Name   string `hcl:"name,label"`
	Width  int    `hcl:"width"`
	Height int    `hcl:"height"`
}

type StepBlock struct {
	Kind string `hcl:"kind,label"`
	Name string `hcl:"name,label"`

	RGB        []int    `hcl:"rgb,optional"`
	Factor     *int     `hcl:"factor,optional"`
	Threshold1 *float64 `hcl:"threshold1,optional"`
	Threshold2 *float64 `hcl:"threshold2,optional"`
	Kernel     *string  `hcl:"kernel,optional"`
	Iterations *int     `hcl:"iterations,optional"`
}

// Registrar receives the kernels and steps of a pipeline file
type Registrar interface {
	RegisterKernel(name string, width, height int) error
	RegisterColorThreshold(name string, color algorithms.RGB, factor int) error
	RegisterCanny(name string, threshold1, threshold2 float64) error
	RegisterMorphology(name string, op vision.MorphOp, kernel string, iterations int) error
}

// LoadPipeline parses an HCL pipeline file from disk
func LoadPipeline(path string) (*PipelineFile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodePipeline(path, file)
}

// ParsePipeline parses HCL source; filename is only used in diagnostics
func ParsePipeline(src []byte, filename string) (*PipelineFile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodePipeline(filename, file)
}

func decodePipeline(filename string, file *hcl.File) (*PipelineFile, error) {
	var pf PipelineFile
	if diags := gohcl.DecodeBody(file.Body, nil, &pf); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return &pf, nil
}

// Apply registers every kernel, then every step in file order
func (pf *PipelineFile) Apply(r Registrar) error {
	for _, k := range pf.Kernels {
		if err := r.RegisterKernel(k.Name, k.Width, k.Height); err != nil {
			return fmt.Errorf("kernel %q: %w", k.Name, err)
		}
	}

	for _, s := range pf.Steps {
		if err := s.register(r); err != nil {
			return fmt.Errorf("step %s %q: %w", s.Kind, s.Name, err)
		}
	}
	return nil
}

func (s *StepBlock) register(r Registrar) error {
	kind, err := algorithms.ParseKind(s.Kind)
	if err != nil {
		return err
	}

	switch kind {
	case algorithms.KindColorThreshold:
		if len(s.RGB) != 3 {
			return fmt.Errorf("%w: rgb needs 3 values, got %d", algorithms.ErrInvalidParameter, len(s.RGB))
		}
		if s.Factor == nil {
			return fmt.Errorf("%w: factor is required", algorithms.ErrInvalidParameter)
		}
		color := algorithms.RGB{R: s.RGB[0], G: s.RGB[1], B: s.RGB[2]}
		return r.RegisterColorThreshold(s.Name, color, *s.Factor)

	case algorithms.KindCanny:
		t1, t2 := float64(defaultCannyThreshold1), float64(defaultCannyThreshold2)
		if s.Threshold1 != nil {
			t1 = *s.Threshold1
		}
		if s.Threshold2 != nil {
			t2 = *s.Threshold2
		}
		return r.RegisterCanny(s.Name, t1, t2)

	default:
		op, err := algorithms.MorphOpFor(kind)
		if err != nil {
			return err
		}
		if s.Kernel == nil {
			return fmt.Errorf("%w: kernel is required", algorithms.ErrInvalidParameter)
		}
		iterations := 1
		if s.Iterations != nil {
			iterations = *s.Iterations
		}
		return r.RegisterMorphology(s.Name, op, *s.Kernel, iterations)
	}
}
