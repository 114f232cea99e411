// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"github.com/gomlx/gomlx/pkg/support/xslices"
)

// Names of the top-level groups of an experiment document.
const (
	GroupData          = "data_params"
	GroupCoarseGrainer = "cg_params"
	GroupCritic        = "critic_params"
	GroupOptimizer     = "opt_params"
	GroupEstimators    = "estimators"
)

// Groups lists the required top-level groups, in document order.
var Groups = []string{GroupData, GroupCoarseGrainer, GroupCritic, GroupOptimizer, GroupEstimators}

// Default values for optional fields.
const (
	DefaultCoupling       = 1.0
	DefaultConvActivation = "tanh"
	DefaultUseLogits      = true
)

// Experiment is one complete configuration of a coarse-graining run.
type Experiment struct {
	Data          DataParams               `json:"data_params" yaml:"data_params"`
	CoarseGrainer CGParams                 `json:"cg_params" yaml:"cg_params"`
	Critic        CriticParams             `json:"critic_params" yaml:"critic_params"`
	Optimizer     OptParams                `json:"opt_params" yaml:"opt_params"`
	Estimators    map[string]EstimatorSpec `json:"estimators" yaml:"estimators"`
}

// DataParams describes the physical system the samples are drawn from.
type DataParams struct {
	// Model identifies the lattice model, e.g. "ising2d" or "intdimer2d".
	Model string `json:"model" yaml:"model"`

	// LatticeType is the lattice geometry, e.g. "square".
	LatticeType string `json:"lattice_type" yaml:"lattice_type"`

	// Dimension of the lattice: 1, 2 or 3.
	Dimension int `json:"dimension" yaml:"dimension"`

	// L is the linear size of the lattice.
	L int `json:"L" yaml:"L"`

	// T is the temperature.
	T float64 `json:"T" yaml:"T"`

	// J is the coupling. If nil, DefaultCoupling is used.
	J *float64 `json:"J,omitempty" yaml:"J,omitempty"`

	// NumSamples is the number of configurations in the dataset.
	NumSamples int `json:"N_samples" yaml:"N_samples"`

	// Nq is the number of states of a (Potts) degree of freedom. If nil the degrees of
	// freedom are binary.
	Nq *int `json:"Nq,omitempty" yaml:"Nq,omitempty"`

	SRNCorrelation bool `json:"srn_correlation,omitempty" yaml:"srn_correlation,omitempty"`
	HeightField    bool `json:"height_field,omitempty" yaml:"height_field,omitempty"`
	Verbose        bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Coupling returns J, or DefaultCoupling if it is not set.
func (p DataParams) Coupling() float64 {
	if p.J == nil {
		return DefaultCoupling
	}
	return *p.J
}

// Binary returns whether the degrees of freedom are binary, that is, Nq is not set.
func (p DataParams) Binary() bool {
	return p.Nq == nil
}

// CGParams configures the coarse-graining network and the annealing of its Gumbel-softmax
// relaxation parameter.
type CGParams struct {
	// NumHiddens is the number of components of the coarse-grained variable.
	NumHiddens int `json:"num_hiddens" yaml:"num_hiddens"`

	// LL is the shape of the visible block, one entry per lattice dimension.
	LL []int `json:"ll" yaml:"ll,flow"`

	// ConvActivation is applied to the convolved variables when HEmbed is false.
	// If nil, DefaultConvActivation is used.
	ConvActivation *string `json:"conv_activation,omitempty" yaml:"conv_activation,omitempty"`

	// HEmbed switches to sampling pseudo-discrete variables with the Gumbel-softmax trick.
	HEmbed bool `json:"h_embed,omitempty" yaml:"h_embed,omitempty"`

	// UseLogits treats the convolved values as logits. If nil, DefaultUseLogits is used.
	UseLogits *bool `json:"use_logits,omitempty" yaml:"use_logits,omitempty"`

	// UseProbs treats the convolved values as probabilities. It takes precedence over UseLogits.
	UseProbs bool `json:"use_probs,omitempty" yaml:"use_probs,omitempty"`

	InitTemperature float64 `json:"init_temperature" yaml:"init_temperature"`
	MinTemperature  float64 `json:"min_temperature" yaml:"min_temperature"`
	RelaxationRate  float64 `json:"relaxation_rate" yaml:"relaxation_rate"`
}

// Activation returns the activation of the convolved variables, with the default resolved.
func (p CGParams) Activation() string {
	if p.ConvActivation == nil {
		return DefaultConvActivation
	}
	return *p.ConvActivation
}

// Logits returns whether the convolved values are used as logits, with the default resolved.
func (p CGParams) Logits() bool {
	if p.UseLogits == nil {
		return DefaultUseLogits
	}
	return *p.UseLogits
}

// CriticParams configures the critic used by the mutual-information estimators.
type CriticParams struct {
	Layers     int    `json:"layers" yaml:"layers"`
	EmbedDim   int    `json:"embed_dim" yaml:"embed_dim"`
	HiddenDim  int    `json:"hidden_dim" yaml:"hidden_dim"`
	Activation string `json:"activation" yaml:"activation"`
}

// OptParams configures the optimizer.
type OptParams struct {
	BatchSize  int `json:"batch_size" yaml:"batch_size"`
	Iterations int `json:"iterations" yaml:"iterations"`

	// Shuffle is the size of the shuffle buffer.
	Shuffle      int     `json:"shuffle" yaml:"shuffle"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
}

// EstimatorSpec selects a mutual-information estimator.
type EstimatorSpec struct {
	Estimator string `json:"estimator" yaml:"estimator"`
	Critic    string `json:"critic" yaml:"critic"`
	Baseline  string `json:"baseline" yaml:"baseline"`
}

// EstimatorLabels returns the labels of the configured estimators, sorted.
func (e *Experiment) EstimatorLabels() []string {
	return xslices.SortedKeys(e.Estimators)
}
