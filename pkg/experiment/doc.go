// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

// Package experiment defines, loads and validates the configuration of a real-space
// mutual-information coarse-graining experiment.
//
// An experiment document (JSON or YAML) has five required groups:
//
//   - data_params: the lattice model sampled (model, lattice_type, dimension, L, T, J, N_samples, Nq
//     and feature flags).
//   - cg_params: the coarse-graining network (num_hiddens, the visible block shape ll, activation,
//     embedding switches and the annealing of the Gumbel-softmax temperature).
//   - critic_params: the critic used by the mutual-information estimators.
//   - opt_params: batch size, iterations, shuffle buffer and learning rate.
//   - estimators: label -> {estimator, critic, baseline}.
//
// Example:
//
//	exp, err := experiment.NewLoader().
//		WithSettings(*flagSettings).
//		LoadFile("~/rsmi/intdimer2d.json")
//	if err != nil {
//		klog.Fatalf("%+v", err)
//	}
//	cg := exp.CoarseGraining()
//	fmt.Printf("%s, kernel %v, tau(1000)=%g\n", cg.Method, cg.KernelShape, cg.Schedule.Temperature(1000))
//
// Invalid documents are rejected as a whole: errors are a *ValidationError (matching
// ErrInvalidConfig) listing every offending group and field, or a decoding error.
package experiment
