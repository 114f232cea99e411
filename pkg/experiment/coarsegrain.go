// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"slices"

	"github.com/rsmi-ne/cgconfig/pkg/anneal"
)

// Method used to produce the coarse-grained variable from the convolved visible block.
type Method int

const (
	// MethodConvolved uses the activated convolution output directly.
	MethodConvolved Method = iota

	// MethodPseudoCategorical samples (pseudo-)discrete variables with the Gumbel-softmax trick.
	MethodPseudoCategorical
)

// String implements fmt.Stringer.
func (m Method) String() string {
	switch m {
	case MethodConvolved:
		return "convolved variables"
	case MethodPseudoCategorical:
		return "pseudo-categorical sampling"
	}
	return "unknown"
}

// Embedder is the relaxed distribution sampled when embedding the coarse-grained variable.
type Embedder int

const (
	EmbedderNone Embedder = iota
	EmbedderRelaxedBernoulli
	EmbedderRelaxedOneHotCategorical
)

// String implements fmt.Stringer.
func (e Embedder) String() string {
	switch e {
	case EmbedderNone:
		return "none"
	case EmbedderRelaxedBernoulli:
		return "RelaxedBernoulli"
	case EmbedderRelaxedOneHotCategorical:
		return "RelaxedOneHotCategorical"
	}
	return "unknown"
}

// Parameterization tells how the convolved values feed the embedder.
type Parameterization int

const (
	ParamNone Parameterization = iota
	ParamLogits
	// ParamProbs applies a softmax before the embedder.
	ParamProbs
)

// String implements fmt.Stringer.
func (p Parameterization) String() string {
	switch p {
	case ParamNone:
		return "none"
	case ParamLogits:
		return "logits"
	case ParamProbs:
		return "probs"
	}
	return "unknown"
}

// CoarseGraining describes the coarse-graining network determined by an experiment.
type CoarseGraining struct {
	Method           Method
	Embedder         Embedder
	Parameterization Parameterization

	// Activation applied to the convolution output. Only used by MethodConvolved.
	Activation string

	// KernelShape is the block shape followed by the number of hidden components.
	KernelShape []int

	// Einsum is the equation contracting a batch of visible blocks (batch, block...,
	// channels) with the kernel into (batch, hidden, channels). It is empty for 1-d blocks,
	// which have no dedicated kernel: 1-d systems are usually laid out as 2-d blocks.
	Einsum string

	// Channels per lattice site: Nq, or 1 for binary degrees of freedom.
	Channels int

	// OutputSize is the size of the flattened coarse-grained variable.
	OutputSize int

	// Schedule of the Gumbel-softmax relaxation temperature. Only used by
	// MethodPseudoCategorical.
	Schedule anneal.Schedule
}

// blockEinsum indexed by the number of block dimensions.
var blockEinsum = map[int]string{
	2: "tijk,ijs->tsk",
	3: "tijkl,ijks->tsl",
}

// CoarseGraining derives the description of the coarse-graining network. The experiment is
// assumed to be valid.
func (e *Experiment) CoarseGraining() CoarseGraining {
	p := e.CoarseGrainer
	cg := CoarseGraining{
		KernelShape: append(slices.Clone(p.LL), p.NumHiddens),
		Einsum:      blockEinsum[len(p.LL)],
		Channels:    1,
		Schedule:    p.Schedule(),
	}
	if !e.Data.Binary() {
		cg.Channels = *e.Data.Nq
	}
	cg.OutputSize = p.NumHiddens * cg.Channels

	if !p.HEmbed {
		cg.Method = MethodConvolved
		cg.Activation = p.Activation()
		return cg
	}
	cg.Method = MethodPseudoCategorical
	if e.Data.Binary() {
		cg.Embedder = EmbedderRelaxedBernoulli
	} else {
		cg.Embedder = EmbedderRelaxedOneHotCategorical
	}
	switch {
	case p.UseProbs:
		cg.Parameterization = ParamProbs
		cg.Activation = "softmax"
	case p.Logits():
		cg.Parameterization = ParamLogits
	}
	return cg
}

// Schedule returns the annealing schedule of the Gumbel-softmax relaxation temperature.
func (p CGParams) Schedule() anneal.Schedule {
	return anneal.Schedule{
		Initial: p.InitTemperature,
		Minimum: p.MinTemperature,
		Rate:    p.RelaxationRate,
	}
}
