// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rsmi-ne/cgconfig/pkg/anneal"
	"github.com/rsmi-ne/cgconfig/pkg/experiment"
)

// Schedules prints the Gumbel-softmax temperature of each experiment at numPoints steps evenly
// spaced over its training iterations.
func Schedules(w io.Writer, exps []*experiment.Experiment, names []string, numPoints int) {
	for ii, exp := range exps {
		schedule := exp.CoarseGrainer.Schedule()
		r := newReport("Annealing schedule: "+names[ii], []string{"Step", "Temperature"}, lipgloss.Right)
		if exp.CoarseGraining().Method != experiment.MethodPseudoCategorical {
			r.note = "(not used: cg_params.h_embed is false)"
		}
		for _, point := range schedule.Samples(exp.Optimizer.Iterations, numPoints) {
			r.add(false, humanize.Comma(int64(point.Step)), formatTemperature(schedule, point))
		}
		r.write(w)
	}
}

func formatTemperature(schedule anneal.Schedule, point anneal.Point) string {
	if point.Temperature <= schedule.Minimum {
		return fmt.Sprintf("%.4g (floor)", point.Temperature)
	}
	return fmt.Sprintf("%.4g", point.Temperature)
}
