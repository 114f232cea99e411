// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDoc() map[string]any {
	return map[string]any{
		"data_params": map[string]any{
			"model":   "ising2d",
			"L":       json.Number("64"),
			"T":       json.Number("2.269"),
			"verbose": false,
			"Nq":      nil,
		},
		"cg_params": map[string]any{
			"ll": []any{json.Number("2"), json.Number("2")},
		},
		"estimators": map[string]any{
			"InfoNCE": map[string]any{"estimator": "infonce", "critic": "separable", "baseline": "constant"},
		},
	}
}

func group(doc map[string]any, name string) map[string]any {
	return doc[name].(map[string]any)
}

func TestApply(t *testing.T) {
	doc := createTestDoc()
	paramsSet, err := Apply(doc,
		"data_params/L=1_024;/data_params/T=1.5;data_params/verbose=true;data_params/model=intdimer2d;"+
			"cg_params/ll=4, 8;estimators/InfoNCE/critic=concat;")
	require.NoError(t, err)
	require.Equal(t, []string{"data_params/L", "/data_params/T", "data_params/verbose", "data_params/model",
		"cg_params/ll", "estimators/InfoNCE/critic"}, paramsSet)

	data := group(doc, "data_params")
	assert.Equal(t, json.Number("1024"), data["L"])
	assert.Equal(t, json.Number("1.5"), data["T"])
	assert.Equal(t, true, data["verbose"])
	assert.Equal(t, "intdimer2d", data["model"])
	assert.Equal(t, []any{json.Number("4"), json.Number("8")}, group(doc, "cg_params")["ll"])
	assert.Equal(t, "concat", group(group(doc, "estimators"), "InfoNCE")["critic"])
}

func TestApplyNewKeys(t *testing.T) {
	doc := createTestDoc()
	_, err := Apply(doc, "data_params/J=-1;data_params/Nq=3;data_params/height_field=false;"+
		"estimators/MINE/estimator=mine;estimators/MINE/critic=concat;estimators/MINE/baseline=constant")
	require.NoError(t, err)
	data := group(doc, "data_params")
	assert.Equal(t, json.Number("-1"), data["J"])
	assert.Equal(t, json.Number("3"), data["Nq"])
	assert.Equal(t, false, data["height_field"])
	assert.Equal(t, map[string]any{"estimator": "mine", "critic": "concat", "baseline": "constant"},
		group(group(doc, "estimators"), "MINE"))

	// Whole new group, and literal inference.
	_, err = Apply(doc, "extra/x=1,2;extra/y=null;extra/z=hello, world")
	require.NoError(t, err)
	extra := group(doc, "extra")
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, extra["x"])
	assert.Nil(t, extra["y"])
	assert.Equal(t, "hello, world", extra["z"])
}

func TestApplyErrors(t *testing.T) {
	for _, setting := range []string{
		"data_params/L=abc",         // Wrong type for a number.
		"data_params/verbose=maybe", // Wrong type for a boolean.
		"cg_params/ll=2,x",          // Wrong type for list elements.
		"L=3",                       // Missing group.
		"data_params/L",             // Missing value.
		"data_params//L=3",          // Empty path element.
		"data_params/model/x=3",     // Not a group.
		"data_params/L=1=2",         // Ambiguous value.
		"data_params/L=500}",        // Trailing content after a number.
		"data_params/T=1.5]",        // Trailing content after a number.
		"cg_params/ll=4,8}",         // Trailing content in a list element.
		"file:/does/not/exist.txt",  // Missing file.
	} {
		doc := createTestDoc()
		_, err := Apply(doc, setting)
		assert.Errorf(t, err, "setting %q should have failed", setting)
	}
}

func TestApplyFile(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "overrides.txt")
	require.NoError(t, os.WriteFile(settingsPath, []byte(
		"# Larger lattice.\n"+
			"data_params/L=128\n"+
			"\n"+
			"data_params/T=3;data_params/verbose=true\n"), 0644))

	doc := createTestDoc()
	paramsSet, err := Apply(doc, "file:"+settingsPath+";data_params/model=ising3d")
	require.NoError(t, err)
	assert.Equal(t, []string{"data_params/L", "data_params/T", "data_params/verbose", "data_params/model"}, paramsSet)
	data := group(doc, "data_params")
	assert.Equal(t, json.Number("128"), data["L"])
	assert.Equal(t, json.Number("3"), data["T"])
	assert.Equal(t, "ising3d", data["model"])
}
