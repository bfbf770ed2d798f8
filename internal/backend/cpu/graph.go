package cpu

import (
	"errors"
	"fmt"

	"github.com/born-ml/batchfit/internal/backend"
)

// InputSpec declares a named graph input of a fixed per-example width.
//
// Sequence inputs use the per-step width; steps are mean-pooled before the
// heads see them.
type InputSpec struct {
	Name  string
	Width int
}

// OutputSpec declares one model head.
type OutputSpec struct {
	Name  string
	Width int
}

// GraphConfig lists the inputs and heads of a graph.
type GraphConfig struct {
	Inputs  []InputSpec
	Outputs []OutputSpec
}

type input struct {
	name  string
	width int
}

func (i *input) Name() string { return i.name }

type output struct {
	name  string
	width int
	index int
}

func (o *output) Name() string { return o.name }

// Graph is a set of affine heads over one shared input.
//
// Input names may repeat; resolving a repeated name fails as ambiguous.
type Graph struct {
	inputs  []*input
	outputs []*output
}

// NewGraph validates cfg and builds a graph.
func NewGraph(cfg GraphConfig) (*Graph, error) {
	if len(cfg.Inputs) == 0 {
		return nil, errors.New("cpu: graph needs at least one input")
	}
	g := &Graph{}
	for _, in := range cfg.Inputs {
		if in.Width <= 0 {
			return nil, fmt.Errorf("cpu: input %q has width %d", in.Name, in.Width)
		}
		g.inputs = append(g.inputs, &input{name: in.Name, width: in.Width})
	}
	for i, out := range cfg.Outputs {
		if out.Width <= 0 {
			return nil, fmt.Errorf("cpu: output %q has width %d", out.Name, out.Width)
		}
		g.outputs = append(g.outputs, &output{name: out.Name, width: out.Width, index: i})
	}
	return g, nil
}

// Input implements backend.Graph.
func (g *Graph) Input(name string) (backend.InputHandle, error) {
	var found *input
	count := 0
	for _, in := range g.inputs {
		if in.name == name {
			found = in
			count++
		}
	}
	switch count {
	case 0:
		return nil, &backend.BindingError{Name: name, Err: backend.ErrInputNotFound}
	case 1:
		return found, nil
	default:
		return nil, &backend.BindingError{Name: name, Count: count, Err: backend.ErrAmbiguousInput}
	}
}

// Output implements backend.Graph.
func (g *Graph) Output() (backend.OutputHandle, error) {
	switch len(g.outputs) {
	case 0:
		return nil, backend.ErrOutputNotFound
	case 1:
		return g.outputs[0], nil
	default:
		return nil, fmt.Errorf("%w: %d heads", backend.ErrAmbiguousOutput, len(g.outputs))
	}
}

// Outputs implements backend.Graph.
func (g *Graph) Outputs() []backend.OutputHandle {
	out := make([]backend.OutputHandle, len(g.outputs))
	for i, o := range g.outputs {
		out[i] = o
	}
	return out
}

// resolve checks that both handles were issued by g.
func (g *Graph) resolve(in backend.InputHandle, out backend.OutputHandle) (*input, *output, error) {
	i, ok := in.(*input)
	if !ok || !g.hasInput(i) {
		return nil, nil, fmt.Errorf("%w: input %v", backend.ErrUnboundHandle, handleName(in))
	}
	o, ok := out.(*output)
	if !ok || o.index >= len(g.outputs) || g.outputs[o.index] != o {
		return nil, nil, fmt.Errorf("%w: output %v", backend.ErrUnboundHandle, handleName(out))
	}
	return i, o, nil
}

func (g *Graph) hasInput(in *input) bool {
	for _, candidate := range g.inputs {
		if candidate == in {
			return true
		}
	}
	return false
}

func handleName(h interface{ Name() string }) string {
	if h == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", h.Name())
}
