// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"fmt"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/gomlx/gomlx/pkg/support/xslices"
)

var (
	// KnownActivations accepted by cg_params.conv_activation and critic_params.activation.
	KnownActivations = sets.MakeWith(
		"linear", "tanh", "relu", "sigmoid", "softmax", "softplus",
		"elu", "selu", "gelu", "swish", "leaky_relu")

	// KnownEstimators accepted by the "estimator" field of an estimator.
	KnownEstimators = sets.MakeWith("infonce", "nwj", "tuba", "js", "interpolated", "dv", "mine", "smile")

	// KnownCritics accepted by the "critic" field of an estimator.
	KnownCritics = sets.MakeWith("separable", "concat", "bilinear", "inner")
)

// MaxDimension is the largest lattice dimension supported by the coarse-graining kernels.
const MaxDimension = 3

// Validate checks the values of a decoded (or hand-built) Experiment. It returns a
// *ValidationError listing every offending field, or nil.
func (e *Experiment) Validate() error {
	v := &validator{}
	e.Data.validate(v)
	e.CoarseGrainer.validate(v, e.Data)
	e.Critic.validate(v)
	e.Optimizer.validate(v, e.Data)
	validateEstimators(v, e.Estimators)
	return v.err()
}

func (p DataParams) validate(v *validator) {
	const g = GroupData
	if p.Model == "" {
		v.add(g, "model", nil, "must not be empty")
	}
	if p.LatticeType == "" {
		v.add(g, "lattice_type", nil, "must not be empty")
	}
	if p.Dimension < 1 || p.Dimension > MaxDimension {
		v.add(g, "dimension", p.Dimension, "must be between 1 and %d", MaxDimension)
	}
	if p.L <= 0 {
		v.add(g, "L", p.L, "must be positive")
	}
	if !(p.T > 0) {
		v.add(g, "T", p.T, "must be positive")
	}
	if p.NumSamples <= 0 {
		v.add(g, "N_samples", p.NumSamples, "must be positive")
	}
	if p.Nq != nil && *p.Nq < 2 {
		v.add(g, "Nq", *p.Nq, "must be at least 2 when set")
	}
}

func (p CGParams) validate(v *validator, data DataParams) {
	const g = GroupCoarseGrainer
	if p.NumHiddens < 1 {
		v.add(g, "num_hiddens", p.NumHiddens, "must be at least 1")
	}
	if len(p.LL) != data.Dimension {
		v.add(g, "ll", p.LL, "must have %d entries, one per lattice dimension (data_params.dimension=%d)",
			data.Dimension, data.Dimension)
	}
	for ii, size := range p.LL {
		if size < 1 {
			v.add(g, fmt.Sprintf("ll.%d", ii), size, "block size must be positive")
		} else if data.L > 0 && size > data.L {
			v.add(g, fmt.Sprintf("ll.%d", ii), size, "block size must not exceed the lattice size L=%d", data.L)
		}
	}
	if !KnownActivations.Has(p.Activation()) {
		v.add(g, "conv_activation", p.Activation(), "unknown activation, valid values are %q",
			sortedSet(KnownActivations))
	}
	if p.HEmbed && !p.UseProbs && !p.Logits() {
		v.add(g, "h_embed", nil, "embedding requires use_logits or use_probs to be true")
	}
	if !(p.MinTemperature > 0) {
		v.add(g, "min_temperature", p.MinTemperature, "must be positive")
	}
	if !(p.MinTemperature < p.InitTemperature) {
		v.add(g, "min_temperature", p.MinTemperature,
			"must be smaller than init_temperature=%g", p.InitTemperature)
	}
	if p.RelaxationRate < 0 {
		v.add(g, "relaxation_rate", p.RelaxationRate, "must not be negative")
	}
}

func (p CriticParams) validate(v *validator) {
	const g = GroupCritic
	if p.Layers < 1 {
		v.add(g, "layers", p.Layers, "must be at least 1")
	}
	if p.EmbedDim < 1 {
		v.add(g, "embed_dim", p.EmbedDim, "must be at least 1")
	}
	if p.HiddenDim < 1 {
		v.add(g, "hidden_dim", p.HiddenDim, "must be at least 1")
	}
	if !KnownActivations.Has(p.Activation) {
		v.add(g, "activation", p.Activation, "unknown activation, valid values are %q",
			sortedSet(KnownActivations))
	}
}

func (p OptParams) validate(v *validator, data DataParams) {
	const g = GroupOptimizer
	if p.BatchSize < 1 {
		v.add(g, "batch_size", p.BatchSize, "must be at least 1")
	} else if data.NumSamples > 0 && p.BatchSize > data.NumSamples {
		v.add(g, "batch_size", p.BatchSize, "must not exceed data_params.N_samples=%d", data.NumSamples)
	}
	if p.Iterations < 1 {
		v.add(g, "iterations", p.Iterations, "must be at least 1")
	}
	if p.Shuffle < 0 {
		v.add(g, "shuffle", p.Shuffle, "must not be negative")
	}
	if !(p.LearningRate > 0) {
		v.add(g, "learning_rate", p.LearningRate, "must be positive")
	}
}

func validateEstimators(v *validator, estimators map[string]EstimatorSpec) {
	const g = GroupEstimators
	if len(estimators) == 0 {
		v.add(g, "", nil, "at least one estimator must be configured")
		return
	}
	for _, label := range xslices.SortedKeys(estimators) {
		spec := estimators[label]
		if label == "" {
			v.add(g, "", nil, "estimator label must not be empty")
		} else if strings.Contains(label, "/") {
			v.add(g, label, nil, "estimator label must not contain \"/\"")
		}
		if !KnownEstimators.Has(spec.Estimator) {
			v.add(g, label+".estimator", spec.Estimator, "unknown estimator, valid values are %q",
				sortedSet(KnownEstimators))
		}
		if !KnownCritics.Has(spec.Critic) {
			v.add(g, label+".critic", spec.Critic, "unknown critic, valid values are %q",
				sortedSet(KnownCritics))
		}
		if spec.Baseline == "" {
			v.add(g, label+".baseline", nil, "must not be empty")
		}
	}
}

func sortedSet(s sets.Set[string]) []string {
	return xslices.SortedKeys(s)
}
