// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

// Package hyperparams converts experiments to and from the hyperparameters of a GoMLX
// context.Context, so a training program built on GoMLX can read them with
// context.GetParamOr, override them with the "-set" flag and save them along its checkpoints.
//
// Each group is stored in its own scope ("/data_params", "/cg_params", "/critic_params",
// "/opt_params"), and each estimator in "/estimators/<label>". The root scope also gets the
// parameters GoMLX trainers conventionally read: "learning_rate", "optimizer", "batch_size"
// and "train_steps".
package hyperparams

import (
	"fmt"
	"strings"

	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/pkg/errors"
	"github.com/rsmi-ne/cgconfig/pkg/anneal"
	"github.com/rsmi-ne/cgconfig/pkg/experiment"
)

const (
	// ParamBatchSize at the root scope mirrors opt_params.batch_size.
	ParamBatchSize = "batch_size"

	// ParamTrainSteps at the root scope mirrors opt_params.iterations.
	ParamTrainSteps = "train_steps"

	// DefaultOptimizer set at the root scope: the coarse-grainer is trained with Adam.
	DefaultOptimizer = "adam"
)

// ToContext sets the experiment as hyperparameters of ctx. See package documentation for the
// layout.
func ToContext(ctx *context.Context, exp *experiment.Experiment) {
	root := ctx.InAbsPath(context.RootScope)

	d := exp.Data
	dataCtx := root.In(experiment.GroupData)
	dataCtx.SetParams(map[string]any{
		"model":           d.Model,
		"lattice_type":    d.LatticeType,
		"dimension":       d.Dimension,
		"L":               d.L,
		"T":               d.T,
		"J":               d.Coupling(),
		"N_samples":       d.NumSamples,
		"srn_correlation": d.SRNCorrelation,
		"height_field":    d.HeightField,
		"verbose":         d.Verbose,
	})
	if d.Nq != nil {
		dataCtx.SetParam("Nq", *d.Nq)
	}

	cg := exp.CoarseGrainer
	root.In(experiment.GroupCoarseGrainer).SetParams(map[string]any{
		"num_hiddens":               cg.NumHiddens,
		"ll":                        append([]int(nil), cg.LL...),
		"conv_activation":           cg.Activation(),
		"h_embed":                   cg.HEmbed,
		"use_logits":                cg.Logits(),
		"use_probs":                 cg.UseProbs,
		anneal.ParamInitTemperature: cg.InitTemperature,
		anneal.ParamMinTemperature:  cg.MinTemperature,
		anneal.ParamRelaxationRate:  cg.RelaxationRate,
	})

	c := exp.Critic
	root.In(experiment.GroupCritic).SetParams(map[string]any{
		"layers":     c.Layers,
		"embed_dim":  c.EmbedDim,
		"hidden_dim": c.HiddenDim,
		"activation": c.Activation,
	})

	o := exp.Optimizer
	root.In(experiment.GroupOptimizer).SetParams(map[string]any{
		"batch_size":    o.BatchSize,
		"iterations":    o.Iterations,
		"shuffle":       o.Shuffle,
		"learning_rate": o.LearningRate,
	})

	estimatorsCtx := root.In(experiment.GroupEstimators)
	for _, label := range exp.EstimatorLabels() {
		spec := exp.Estimators[label]
		estimatorsCtx.In(label).SetParams(map[string]any{
			"estimator": spec.Estimator,
			"critic":    spec.Critic,
			"baseline":  spec.Baseline,
		})
	}

	root.SetParams(map[string]any{
		optimizers.ParamLearningRate: o.LearningRate,
		optimizers.ParamOptimizer:    DefaultOptimizer,
		ParamBatchSize:               o.BatchSize,
		ParamTrainSteps:              o.Iterations,
	})
}

// FromContext rebuilds the experiment stored by ToContext (possibly modified since, e.g. by
// the GoMLX "-set" flag) and validates it.
//
// Overrides of the root "learning_rate", "batch_size" and "train_steps" take precedence over
// the ones in "/opt_params", if they differ.
func FromContext(ctx *context.Context) (exp *experiment.Experiment, err error) {
	root := ctx.InAbsPath(context.RootScope)
	// MustGetParam panics (with an exception) on params of the wrong type.
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = errors.WithMessage(rErr, "invalid experiment hyperparameters in context")
			} else {
				err = errors.Errorf("invalid experiment hyperparameters in context: %v", r)
			}
			exp = nil
		}
	}()

	exp = &experiment.Experiment{}
	dataCtx := root.In(experiment.GroupData)
	exp.Data = experiment.DataParams{
		Model:          mustGet[string](dataCtx, "model"),
		LatticeType:    mustGet[string](dataCtx, "lattice_type"),
		Dimension:      mustGet[int](dataCtx, "dimension"),
		L:              mustGet[int](dataCtx, "L"),
		T:              mustGet[float64](dataCtx, "T"),
		NumSamples:     mustGet[int](dataCtx, "N_samples"),
		SRNCorrelation: context.GetParamOr(dataCtx, "srn_correlation", false),
		HeightField:    context.GetParamOr(dataCtx, "height_field", false),
		Verbose:        context.GetParamOr(dataCtx, "verbose", false),
	}
	if j, found := getInScope(dataCtx, "J"); found && j != nil {
		if coupling := context.MustGetParam[float64](dataCtx, "J"); coupling != experiment.DefaultCoupling {
			exp.Data.J = &coupling
		}
	}
	if nq, found := getInScope(dataCtx, "Nq"); found && nq != nil {
		value := context.MustGetParam[int](dataCtx, "Nq")
		exp.Data.Nq = &value
	}

	cgCtx := root.In(experiment.GroupCoarseGrainer)
	// Required here: anneal.FromContext would fall back to the defaults.
	schedule := anneal.Schedule{
		Initial: mustGet[float64](cgCtx, anneal.ParamInitTemperature),
		Minimum: mustGet[float64](cgCtx, anneal.ParamMinTemperature),
		Rate:    mustGet[float64](cgCtx, anneal.ParamRelaxationRate),
	}
	activation := context.GetParamOr(cgCtx, "conv_activation", experiment.DefaultConvActivation)
	useLogits := context.GetParamOr(cgCtx, "use_logits", experiment.DefaultUseLogits)
	exp.CoarseGrainer = experiment.CGParams{
		NumHiddens:      mustGet[int](cgCtx, "num_hiddens"),
		LL:              mustGet[[]int](cgCtx, "ll"),
		HEmbed:          context.GetParamOr(cgCtx, "h_embed", false),
		UseProbs:        context.GetParamOr(cgCtx, "use_probs", false),
		InitTemperature: schedule.Initial,
		MinTemperature:  schedule.Minimum,
		RelaxationRate:  schedule.Rate,
	}
	// Values equal to the defaults are left unset, as they are usually omitted in documents.
	if activation != experiment.DefaultConvActivation {
		exp.CoarseGrainer.ConvActivation = &activation
	}
	if useLogits != experiment.DefaultUseLogits {
		exp.CoarseGrainer.UseLogits = &useLogits
	}

	criticCtx := root.In(experiment.GroupCritic)
	exp.Critic = experiment.CriticParams{
		Layers:     mustGet[int](criticCtx, "layers"),
		EmbedDim:   mustGet[int](criticCtx, "embed_dim"),
		HiddenDim:  mustGet[int](criticCtx, "hidden_dim"),
		Activation: mustGet[string](criticCtx, "activation"),
	}

	optCtx := root.In(experiment.GroupOptimizer)
	exp.Optimizer = experiment.OptParams{
		BatchSize:    overriddenAtRoot[int](root, optCtx, ParamBatchSize, "batch_size"),
		Iterations:   overriddenAtRoot[int](root, optCtx, ParamTrainSteps, "iterations"),
		Shuffle:      mustGet[int](optCtx, "shuffle"),
		LearningRate: overriddenAtRoot[float64](root, optCtx, optimizers.ParamLearningRate, "learning_rate"),
	}

	exp.Estimators = make(map[string]experiment.EstimatorSpec)
	estimatorsPrefix := context.RootScope + experiment.GroupEstimators + context.ScopeSeparator
	root.EnumerateParams(func(scope, key string, value any) {
		if !strings.HasPrefix(scope, estimatorsPrefix) {
			return
		}
		label := strings.TrimPrefix(scope, estimatorsPrefix)
		spec := exp.Estimators[label]
		str := fmt.Sprintf("%v", value)
		switch key {
		case "estimator":
			spec.Estimator = str
		case "critic":
			spec.Critic = str
		case "baseline":
			spec.Baseline = str
		default:
			return
		}
		exp.Estimators[label] = spec
	})

	if err = exp.Validate(); err != nil {
		return nil, err
	}
	return exp, nil
}

// mustGet returns the param set exactly in the scope of ctx: parent scopes are not searched,
// since some keys (e.g. "learning_rate") exist at several levels.
func mustGet[T any](ctx *context.Context, key string) T {
	if _, found := getInScope(ctx, key); !found {
		panic(errors.Errorf("parameter %q missing in scope %q", key, ctx.Scope()))
	}
	return context.MustGetParam[T](ctx, key)
}

// getInScope is like ctx.GetParam, but without searching the parent scopes.
func getInScope(ctx *context.Context, key string) (value any, found bool) {
	scope := ctx.Scope()
	ctx.EnumerateParams(func(s, k string, v any) {
		if s == scope && k == key {
			value, found = v, true
		}
	})
	return
}

// overriddenAtRoot returns the root value of rootKey if it differs from the group's value of key.
func overriddenAtRoot[T comparable](root, groupCtx *context.Context, rootKey, key string) T {
	value := mustGet[T](groupCtx, key)
	if _, found := getInScope(root, rootKey); found {
		if rootValue := context.MustGetParam[T](root, rootKey); rootValue != value {
			return rootValue
		}
	}
	return value
}

// Sprint pretty-prints the hyperparameters of ctx, one per line, sorted by scope and key.
func Sprint(ctx *context.Context) string {
	var parts []string
	ctx.EnumerateParams(func(scope, key string, value any) {
		if scope == context.RootScope {
			scope = ""
		}
		parts = append(parts, fmt.Sprintf("\t\"%s/%s\": (%T) %v", scope, key, value, value))
	})
	return strings.Join(parts, "\n")
}
