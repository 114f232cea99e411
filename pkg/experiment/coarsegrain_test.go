// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"testing"

	"github.com/rsmi-ne/cgconfig/pkg/anneal"
	"github.com/stretchr/testify/assert"
)

func TestCoarseGraining(t *testing.T) {
	e := createTestExperiment()
	cg := e.CoarseGraining()
	assert.Equal(t, MethodConvolved, cg.Method)
	assert.Equal(t, "convolved variables", cg.Method.String())
	assert.Equal(t, EmbedderNone, cg.Embedder)
	assert.Equal(t, DefaultConvActivation, cg.Activation)
	assert.Equal(t, []int{4, 4, 2}, cg.KernelShape)
	assert.Equal(t, "tijk,ijs->tsk", cg.Einsum)
	assert.Equal(t, 1, cg.Channels)
	assert.Equal(t, 2, cg.OutputSize)
	assert.Equal(t, anneal.Schedule{Initial: 2, Minimum: 0.05, Rate: 0.01}, cg.Schedule)
	// KernelShape must not alias the configuration.
	cg.KernelShape[0] = 100
	assert.Equal(t, []int{4, 4}, e.CoarseGrainer.LL)

	// Binary embedding.
	e.CoarseGrainer.HEmbed = true
	cg = e.CoarseGraining()
	assert.Equal(t, MethodPseudoCategorical, cg.Method)
	assert.Equal(t, EmbedderRelaxedBernoulli, cg.Embedder)
	assert.Equal(t, ParamLogits, cg.Parameterization)
	assert.Empty(t, cg.Activation)

	// Potts degrees of freedom, with probabilities taking precedence over logits.
	nq := 3
	e.Data.Nq = &nq
	e.CoarseGrainer.UseProbs = true
	cg = e.CoarseGraining()
	assert.Equal(t, EmbedderRelaxedOneHotCategorical, cg.Embedder)
	assert.Equal(t, "RelaxedOneHotCategorical", cg.Embedder.String())
	assert.Equal(t, ParamProbs, cg.Parameterization)
	assert.Equal(t, "softmax", cg.Activation)
	assert.Equal(t, 3, cg.Channels)
	assert.Equal(t, 6, cg.OutputSize)
}

func TestCoarseGrainingEinsum(t *testing.T) {
	e := createTestExperiment()
	e.Data.Dimension = 3
	e.CoarseGrainer.LL = []int{2, 2, 2}
	assert.Equal(t, "tijkl,ijks->tsl", e.CoarseGraining().Einsum)

	e.Data.Dimension = 1
	e.CoarseGrainer.LL = []int{8}
	cg := e.CoarseGraining()
	assert.Empty(t, cg.Einsum)
	assert.Equal(t, []int{8, 2}, cg.KernelShape)
}
