// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/rsmi-ne/cgconfig/pkg/experiment"
)

// Summary prints the physical system, the coarse-graining network and the training budget of
// each experiment.
func Summary(w io.Writer, exps []*experiment.Experiment, names []string) {
	r := newReport("Summary", append([]string{"experiment"}, names...), lipgloss.Right, lipgloss.Left)
	row := func(label string, fn func(e *experiment.Experiment) string) {
		r.addValues(label, xslices.Map(exps, fn)...)
	}

	row("model", func(e *experiment.Experiment) string { return e.Data.Model })
	row("lattice", func(e *experiment.Experiment) string {
		return fmt.Sprintf("%s, %dD", e.Data.LatticeType, e.Data.Dimension)
	})
	row("L", func(e *experiment.Experiment) string { return humanize.Comma(int64(e.Data.L)) })
	row("T", func(e *experiment.Experiment) string { return fmt.Sprintf("%g", e.Data.T) })
	row("J", func(e *experiment.Experiment) string { return fmt.Sprintf("%g", e.Data.Coupling()) })
	row("degrees of freedom", func(e *experiment.Experiment) string {
		if e.Data.Binary() {
			return "binary"
		}
		return fmt.Sprintf("Nq=%d", *e.Data.Nq)
	})
	row("# samples", func(e *experiment.Experiment) string { return humanize.Comma(int64(e.Data.NumSamples)) })

	row("method", func(e *experiment.Experiment) string { return e.CoarseGraining().Method.String() })
	row("embedder", func(e *experiment.Experiment) string {
		cg := e.CoarseGraining()
		if cg.Embedder == experiment.EmbedderNone {
			return "-"
		}
		return fmt.Sprintf("%s (%s)", cg.Embedder, cg.Parameterization)
	})
	row("activation", func(e *experiment.Experiment) string {
		if a := e.CoarseGraining().Activation; a != "" {
			return a
		}
		return "-"
	})
	row("kernel shape", func(e *experiment.Experiment) string { return fmt.Sprintf("%v", e.CoarseGraining().KernelShape) })
	row("einsum", func(e *experiment.Experiment) string {
		if eq := e.CoarseGraining().Einsum; eq != "" {
			return eq
		}
		return "-"
	})
	row("output size", func(e *experiment.Experiment) string { return humanize.Comma(int64(e.CoarseGraining().OutputSize)) })
	row("temperature", func(e *experiment.Experiment) string {
		s := e.CoarseGrainer.Schedule()
		return fmt.Sprintf("%g -> %g, rate %g", s.Initial, s.Minimum, s.Rate)
	})
	row("floor at step", func(e *experiment.Experiment) string {
		step := e.CoarseGrainer.Schedule().FloorStep()
		if step < 0 {
			return "never"
		}
		return humanize.Comma(int64(step))
	})

	row("critic", func(e *experiment.Experiment) string {
		c := e.Critic
		return fmt.Sprintf("%d layers, embed %d, hidden %d, %s", c.Layers, c.EmbedDim, c.HiddenDim, c.Activation)
	})
	row("batch size", func(e *experiment.Experiment) string { return humanize.Comma(int64(e.Optimizer.BatchSize)) })
	row("iterations", func(e *experiment.Experiment) string { return humanize.Comma(int64(e.Optimizer.Iterations)) })
	row("epochs", func(e *experiment.Experiment) string {
		o := e.Optimizer
		return fmt.Sprintf("%.2f", float64(o.BatchSize)*float64(o.Iterations)/float64(e.Data.NumSamples))
	})
	row("shuffle buffer", func(e *experiment.Experiment) string { return humanize.Comma(int64(e.Optimizer.Shuffle)) })
	row("learning rate", func(e *experiment.Experiment) string { return fmt.Sprintf("%g", e.Optimizer.LearningRate) })
	row("estimators", func(e *experiment.Experiment) string { return strings.Join(e.EstimatorLabels(), ", ") })
	r.write(w)
}
