// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/rsmi-ne/cgconfig/pkg/experiment"
	"github.com/rsmi-ne/cgconfig/pkg/hyperparams"
)

// Params prints the hyperparameters a GoMLX training program would see for each experiment.
func Params(w io.Writer, exps []*experiment.Experiment, names []string) {
	ctxs := make([]*context.Context, len(exps))
	for ii, exp := range exps {
		ctxs[ii] = context.New()
		hyperparams.ToContext(ctxs[ii], exp)
	}

	headers := []string{"Scope", "Name", "Type"}
	if len(names) == 1 {
		headers = append(headers, "Value")
	} else {
		headers = append(headers, names...)
	}
	r := newReport("Hyperparameters", headers)

	// Union of the params set in all experiments: estimators may differ.
	type scopeKey struct{ Scope, Key string }
	scopeKeySet := sets.Make[scopeKey]()
	for _, ctx := range ctxs {
		ctx.EnumerateParams(func(scope, key string, value any) {
			scopeKeySet.Insert(scopeKey{Scope: scope, Key: key})
		})
	}
	scopeKeys := make([]scopeKey, 0, len(scopeKeySet))
	for pair := range scopeKeySet {
		scopeKeys = append(scopeKeys, pair)
	}
	slices.SortFunc(scopeKeys, func(a, b scopeKey) int {
		return cmp.Or(cmp.Compare(a.Scope, b.Scope), cmp.Compare(a.Key, b.Key))
	})

	for _, pair := range scopeKeys {
		row := make([]string, 3+len(ctxs))
		row[0], row[1] = pair.Scope, pair.Key
		for ii, ctx := range ctxs {
			value, found := paramInScope(ctx, pair.Scope, pair.Key)
			if !found {
				continue
			}
			if row[2] == "" {
				row[2] = fmt.Sprintf("%T", value)
			}
			row[3+ii] = fmt.Sprintf("%v", value)
		}
		r.add(!allEqual(row[3:]), row...)
	}
	r.write(w)
}

// paramInScope returns the param set exactly at scope: GetParam would also find the keys of
// parent scopes.
func paramInScope(ctx *context.Context, scope, key string) (value any, found bool) {
	ctx.EnumerateParams(func(s, k string, v any) {
		if s == scope && k == key {
			value, found = v, true
		}
	})
	return
}
