// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/rsmi-ne/cgconfig/pkg/experiment"
)

// Estimators prints the mutual-information estimators of each experiment, one row per label.
func Estimators(w io.Writer, exps []*experiment.Experiment, names []string) {
	labels := sets.Make[string]()
	for _, exp := range exps {
		labels.Insert(exp.EstimatorLabels()...)
	}

	if len(exps) == 1 {
		r := newReport("Estimators", []string{"Label", "Estimator", "Critic", "Baseline"}, lipgloss.Right, lipgloss.Left)
		for _, label := range xslices.SortedKeys(labels) {
			spec := exps[0].Estimators[label]
			r.add(false, label, spec.Estimator, spec.Critic, spec.Baseline)
		}
		r.write(w)
		return
	}

	r := newReport("Estimators", append([]string{"Label"}, names...), lipgloss.Right, lipgloss.Left)
	for _, label := range xslices.SortedKeys(labels) {
		values := xslices.Map(exps, func(e *experiment.Experiment) string {
			spec, found := e.Estimators[label]
			if !found {
				return "-"
			}
			return fmt.Sprintf("%s (%s critic, %s baseline)", spec.Estimator, spec.Critic, spec.Baseline)
		})
		r.addValues(label, values...)
	}
	r.write(w)
}
