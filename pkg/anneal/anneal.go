// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

// Package anneal implements the annealing schedule of the Gumbel-softmax relaxation
// temperature (tau) used when sampling pseudo-discrete coarse-grained variables:
//
//	tau(step) = max(Minimum, Initial * exp(-Rate * step))
package anneal

import (
	"math"

	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/pkg/errors"
)

const (
	// ParamInitTemperature is the context parameter holding Schedule.Initial.
	ParamInitTemperature = "init_temperature"

	// ParamMinTemperature is the context parameter holding Schedule.Minimum.
	ParamMinTemperature = "min_temperature"

	// ParamRelaxationRate is the context parameter holding Schedule.Rate.
	ParamRelaxationRate = "relaxation_rate"
)

// Defaults used by FromContext for parameters that are not set.
const (
	DefaultInitTemperature = 2.0
	DefaultMinTemperature  = 0.05
	DefaultRelaxationRate  = 0.01
)

// Schedule of exponential decay with a floor.
type Schedule struct {
	Initial, Minimum, Rate float64
}

// FromContext reads the schedule from the hyperparameters of ctx, using the keys
// ParamInitTemperature, ParamMinTemperature and ParamRelaxationRate. Parameters not set
// take the Default* values.
//
// Typically, ctx is scoped to the coarse-grainer parameters, e.g. ctx.In("cg_params").
func FromContext(ctx *context.Context) Schedule {
	return Schedule{
		Initial: context.GetParamOr(ctx, ParamInitTemperature, DefaultInitTemperature),
		Minimum: context.GetParamOr(ctx, ParamMinTemperature, DefaultMinTemperature),
		Rate:    context.GetParamOr(ctx, ParamRelaxationRate, DefaultRelaxationRate),
	}
}

// Validate returns an error if the schedule can't be used.
func (s Schedule) Validate() error {
	if !(s.Minimum > 0) {
		return errors.Errorf("minimum temperature must be positive, got %g", s.Minimum)
	}
	if !(s.Minimum < s.Initial) {
		return errors.Errorf("minimum temperature (%g) must be smaller than the initial temperature (%g)",
			s.Minimum, s.Initial)
	}
	if s.Rate < 0 || math.IsNaN(s.Rate) {
		return errors.Errorf("relaxation rate must not be negative, got %g", s.Rate)
	}
	return nil
}

// Temperature at the given global step. Negative steps are taken as 0.
func (s Schedule) Temperature(step int) float64 {
	if step < 0 {
		step = 0
	}
	return math.Max(s.Minimum, s.Initial*math.Exp(-s.Rate*float64(step)))
}

// FloorStep returns the first step at which the temperature reaches Minimum, or -1 if it never
// does (Rate == 0) or only past math.MaxInt steps.
func (s Schedule) FloorStep() int {
	if s.Initial <= s.Minimum {
		return 0
	}
	if s.Rate <= 0 {
		return -1
	}
	floatStep := math.Ceil(math.Log(s.Initial/s.Minimum) / s.Rate)
	// float64(math.MaxInt) rounds up to 2^63, itself out of range.
	if math.IsNaN(floatStep) || floatStep >= float64(math.MaxInt) {
		return -1
	}
	step := int(floatStep)
	// Rounding of the logarithm can leave us one step off.
	for step > 0 && s.Temperature(step-1) <= s.Minimum {
		step--
	}
	for s.Temperature(step) > s.Minimum {
		step++
	}
	return step
}

// Point of a sampled schedule.
type Point struct {
	Step        int
	Temperature float64
}

// Samples returns n points evenly spaced over [0, steps], always including both ends.
// If n < 2, only the two ends are returned.
func (s Schedule) Samples(steps, n int) []Point {
	if steps < 0 {
		steps = 0
	}
	if n < 2 {
		n = 2
	}
	points := make([]Point, 0, n)
	last := -1
	for ii := range n {
		step := int(math.Round(float64(ii) * float64(steps) / float64(n-1)))
		if step == last {
			continue
		}
		last = step
		points = append(points, Point{Step: step, Temperature: s.Temperature(step)})
	}
	return points
}

// Annealer keeps track of the global step of a training loop, and returns the current
// temperature.
type Annealer struct {
	Schedule
	globalStep int
}

// NewAnnealer returns an Annealer at global step 0.
func NewAnnealer(s Schedule) *Annealer {
	return &Annealer{Schedule: s}
}

// SetGlobalStep updates the current global step.
func (a *Annealer) SetGlobalStep(step int) {
	a.globalStep = step
}

// GlobalStep returns the current global step.
func (a *Annealer) GlobalStep() int {
	return a.globalStep
}

// Tau returns the temperature at the current global step.
func (a *Annealer) Tau() float64 {
	return a.Temperature(a.globalStep)
}
