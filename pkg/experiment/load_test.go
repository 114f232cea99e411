// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readDoc reads a testdata JSON file as a generic document, to be modified by tests.
func readDoc(t *testing.T, name string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

// parseModified parses testdata file name after applying modify to its generic document.
func parseModified(t *testing.T, name string, modify func(doc map[string]any)) (*Experiment, error) {
	t.Helper()
	doc := readDoc(t, name)
	modify(doc)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return Parse(data, FormatJSON)
}

func group(doc map[string]any, name string) map[string]any {
	return doc[name].(map[string]any)
}

// requireFieldError checks err is a *ValidationError that includes an error for group and field.
func requireFieldError(t *testing.T, err error, group, field string) *ValidationError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidConfig)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "expected a *ValidationError, got %T: %v", err, err)
	require.Truef(t, validationErr.Has(group, field), "expected error on %s.%s, got %v", group, field, err)
	return validationErr
}

func TestLoadExamples(t *testing.T) {
	exp, err := LoadFile("testdata/intdimer2d.json")
	require.NoError(t, err)
	assert.Equal(t, 64, exp.Data.L)
	assert.Equal(t, "intdimer2d", exp.Data.Model)
	require.Contains(t, exp.Estimators, "InfoNCE")
	assert.Equal(t, "infonce", exp.Estimators["InfoNCE"].Estimator)
	// Nulls are the same as absent.
	assert.Nil(t, exp.Data.J)
	assert.Nil(t, exp.Data.Nq)
	assert.Nil(t, exp.CoarseGrainer.ConvActivation)
	assert.Equal(t, DefaultCoupling, exp.Data.Coupling())
	assert.True(t, exp.Data.Binary())

	exp, err = LoadFile("testdata/ising2d.json")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5}, exp.CoarseGrainer.LL)
	assert.Equal(t, 5e-3, exp.Optimizer.LearningRate)
	assert.Equal(t, []string{"InfoNCE", "NWJ"}, exp.EstimatorLabels())
	assert.Equal(t, DefaultConvActivation, exp.CoarseGrainer.Activation())
	assert.Equal(t, DefaultUseLogits, exp.CoarseGrainer.Logits())
}

func TestLoadYAML(t *testing.T) {
	fromJSON, err := LoadFile("testdata/ising2d.json")
	require.NoError(t, err)
	fromYAML, err := LoadFile("testdata/ising2d.yaml")
	require.NoError(t, err)
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("YAML and JSON experiments differ (-json +yaml):\n%s", diff)
	}

	_, err = Parse([]byte("data_params: {}\n---\ncg_params: {}\n"), FormatYAML)
	require.ErrorContains(t, err, "multiple documents")
	_, err = Parse([]byte("data_params: [\n"), FormatYAML)
	require.ErrorContains(t, err, "malformed YAML")
}

func TestLoadMalformed(t *testing.T) {
	for name, data := range map[string]string{
		"empty":      "",
		"truncated":  `{"data_params": {`,
		"trailing":   `{} {}`,
		"not object": `[1, 2, 3]`,
	} {
		_, err := Parse([]byte(data), FormatJSON)
		assert.Errorf(t, err, "%s document should have failed", name)
		assert.NotErrorIs(t, err, ErrInvalidConfig, "%s document is not decodable, so it's not a validation error", name)
	}

	_, err := LoadFile("testdata/does_not_exist.json")
	require.Error(t, err)
	_, err = LoadFile("testdata/intdimer2d.toml")
	require.ErrorContains(t, err, "unsupported experiment file extension")
}

func TestMissingGroups(t *testing.T) {
	for _, name := range Groups {
		_, err := parseModified(t, "intdimer2d.json", func(doc map[string]any) {
			delete(doc, name)
		})
		requireFieldError(t, err, name, "")
	}

	// All missing groups are reported at once.
	_, err := Parse([]byte(`{"data_params": {}}`), FormatJSON)
	validationErr := requireFieldError(t, err, GroupCoarseGrainer, "")
	for _, name := range Groups[1:] {
		assert.True(t, validationErr.Has(name, ""), "missing group %q not reported", name)
	}
	assert.True(t, validationErr.Has(GroupData, "model"))
}

func TestSchemaErrors(t *testing.T) {
	_, err := parseModified(t, "intdimer2d.json", func(doc map[string]any) {
		delete(group(doc, GroupOptimizer), "learning_rate")
	})
	requireFieldError(t, err, GroupOptimizer, "learning_rate")

	_, err = parseModified(t, "intdimer2d.json", func(doc map[string]any) {
		group(doc, GroupData)["L"] = "64"
	})
	validationErr := requireFieldError(t, err, GroupData, "L")
	assert.Equal(t, "64", validationErr.Errors[0].Value)

	_, err = parseModified(t, "intdimer2d.json", func(doc map[string]any) {
		group(doc, GroupData)["L"] = 64.5
	})
	requireFieldError(t, err, GroupData, "L")

	_, err = parseModified(t, "intdimer2d.json", func(doc map[string]any) {
		group(doc, GroupCoarseGrainer)["ll"] = []any{8, "eight"}
	})
	requireFieldError(t, err, GroupCoarseGrainer, "ll.1")

	_, err = parseModified(t, "intdimer2d.json", func(doc map[string]any) {
		group(doc, GroupCoarseGrainer)["num_hidden"] = 2
		doc["extra_params"] = map[string]any{}
	})
	validationErr = requireFieldError(t, err, GroupCoarseGrainer, "num_hidden")
	assert.True(t, validationErr.Has("extra_params", ""))

	_, err = parseModified(t, "intdimer2d.json", func(doc map[string]any) {
		delete(group(group(doc, GroupEstimators), "InfoNCE"), "baseline")
	})
	requireFieldError(t, err, GroupEstimators, "InfoNCE.baseline")
}

func TestLoaderSettings(t *testing.T) {
	exp, err := NewLoader().
		WithSettings("opt_params/learning_rate=1e-3;cg_params/ll=4,4;estimators/MINE/estimator=mine;" +
			"estimators/MINE/critic=concat;estimators/MINE/baseline=constant").
		LoadFile("testdata/ising2d.json")
	require.NoError(t, err)
	assert.Equal(t, 1e-3, exp.Optimizer.LearningRate)
	assert.Equal(t, []int{4, 4}, exp.CoarseGrainer.LL)
	assert.Equal(t, EstimatorSpec{Estimator: "mine", Critic: "concat", Baseline: "constant"}, exp.Estimators["MINE"])

	// Overridden values are validated like the rest of the document.
	_, err = NewLoader().WithSettings("data_params/dimension=3").LoadFile("testdata/ising2d.json")
	requireFieldError(t, err, GroupCoarseGrainer, "ll")

	_, err = NewLoader().WithSettings("data_params/L=large").LoadFile("testdata/ising2d.json")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "data_params/L"), "error should name the setting: %v", err)

	_, err = NewLoader().WithName("ising").WithSettings("opt_params/momentum=0.9").LoadFile("testdata/ising2d.json")
	requireFieldError(t, err, GroupOptimizer, "momentum")
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json":     FormatJSON,
		"dir/b.YAML": FormatYAML,
		"c.yml":      FormatYAML,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("experiment")
	require.Error(t, err)
	assert.Equal(t, "yaml", FormatYAML.String())
}
