// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

// Package settings applies command-line overrides to a generic (decoded JSON) experiment
// document, before it is validated.
//
// Settings are a list separated by ";": e.g. "opt_params/learning_rate=1e-3;cg_params/ll=4,4".
// Each path names a group followed by a key; estimators take one more level:
// "estimators/InfoNCE/critic=concat". A leading "/" is accepted.
//
// The values are parsed according to the type of the value they replace. Keys not yet in the
// document take the type of the literal given: number, boolean, null, comma separated list of
// numbers or, failing those, string.
package settings

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/pkg/errors"
)

// Separator between the parts of a setting path.
const Separator = "/"

// FilePrefix makes a setting read further settings from a file: newlines work as ";", and
// lines starting with "#" are comments.
const FilePrefix = "file:"

// Apply parses settings and updates doc accordingly. It returns the paths set, in order.
//
// Example:
//
//	paramsSet, err := settings.Apply(doc, "opt_params/iterations=1_000;file:~/rsmi/overrides.txt")
func Apply(doc map[string]any, settings string) (paramsSet []string, err error) {
	for _, setting := range strings.Split(settings, ";") {
		paramsSet, err = applySetting(doc, setting, paramsSet)
		if err != nil {
			return
		}
	}
	return
}

func applySetting(doc map[string]any, setting string, paramsSet []string) (newParamsSet []string, err error) {
	newParamsSet = paramsSet
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return
	}
	if strings.HasPrefix(setting, FilePrefix) {
		filePath := strings.TrimPrefix(setting, FilePrefix)
		filePath, err = fsutil.ReplaceTildeInDir(filePath)
		if err != nil {
			return
		}
		var contents []byte
		contents, err = os.ReadFile(filePath)
		if err != nil {
			err = errors.Wrapf(err, "failed to read settings from file %q", filePath)
			return
		}
		for _, line := range strings.Split(string(contents), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			for _, lineSetting := range strings.Split(line, ";") {
				newParamsSet, err = applySetting(doc, lineSetting, newParamsSet)
				if err != nil {
					return
				}
			}
		}
		return
	}

	paramPath, valueStr, found := strings.Cut(setting, "=")
	if !found || strings.Contains(valueStr, "=") {
		err = errors.Errorf("can't parse setting %q: each setting requires the format \"<group>/<key>=<value>\"",
			setting)
		return
	}
	paramPath = strings.TrimSpace(paramPath)
	valueStr = strings.TrimSpace(valueStr)
	parts := strings.Split(strings.TrimPrefix(paramPath, Separator), Separator)
	for _, part := range parts {
		if part == "" {
			err = errors.Errorf("can't parse setting %q: empty element in path %q", setting, paramPath)
			return
		}
	}
	if len(parts) < 2 {
		err = errors.Errorf("can't set %q: path must be \"<group>/<key>\" (or \"estimators/<label>/<field>\")",
			paramPath)
		return
	}

	// Walk to the map holding the key, creating intermediate objects as needed: e.g. when
	// adding a new estimator.
	container := doc
	for ii, part := range parts[:len(parts)-1] {
		child, exists := container[part]
		if !exists || child == nil {
			newMap := make(map[string]any)
			container[part] = newMap
			container = newMap
			continue
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			err = errors.Errorf("can't set %q: %q is a %s, not a group",
				paramPath, strings.Join(parts[:ii+1], Separator), jsonKind(child))
			return
		}
		container = childMap
	}
	key := parts[len(parts)-1]

	var value any
	if current, exists := container[key]; exists && current != nil {
		value, err = parseLike(current, valueStr)
	} else {
		value = parseLiteral(valueStr)
	}
	if err != nil {
		err = errors.WithMessagef(err, "failed to parse value %q for %q", valueStr, paramPath)
		return
	}
	container[key] = value
	newParamsSet = append(newParamsSet, paramPath)
	return
}

// parseLike parses valueStr to the same JSON kind as current.
func parseLike(current any, valueStr string) (any, error) {
	switch current.(type) {
	case json.Number, float64, int:
		return parseNumber(valueStr)
	case bool:
		b, err := strconv.ParseBool(valueStr)
		if err != nil {
			return nil, errors.Errorf("expected a boolean")
		}
		return b, nil
	case string:
		return valueStr, nil
	case []any:
		if valueStr == "" {
			return []any{}, nil
		}
		var err error
		list := xslices.Map(strings.Split(valueStr, ","), func(str string) any {
			number, newErr := parseNumber(strings.TrimSpace(str))
			if newErr != nil {
				err = newErr
			}
			return number
		})
		if err != nil {
			return nil, errors.WithMessage(err, "expected a comma separated list of numbers")
		}
		return list, nil
	}
	return nil, errors.Errorf("don't know how to override a %s value", jsonKind(current))
}

// parseNumber accepts "_" as digit separator, as in Go.
func parseNumber(str string) (json.Number, error) {
	str = strings.ReplaceAll(str, "_", "")
	dec := json.NewDecoder(bytes.NewReader([]byte(str)))
	dec.UseNumber()
	var number json.Number
	if err := dec.Decode(&number); err != nil {
		return "", errors.Errorf("expected a number, got %q", str)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return "", errors.Errorf("expected a number, got %q", str)
	}
	return number, nil
}

// parseLiteral infers the type of a value for a key not present in the document.
func parseLiteral(valueStr string) any {
	switch valueStr {
	case "null":
		return nil
	case "true", "false":
		return valueStr == "true"
	}
	if number, err := parseNumber(valueStr); err == nil {
		return number
	}
	if strings.Contains(valueStr, ",") {
		var list []any
		for _, str := range strings.Split(valueStr, ",") {
			number, err := parseNumber(strings.TrimSpace(str))
			if err != nil {
				return valueStr
			}
			list = append(list, number)
		}
		return list
	}
	return valueStr
}

func jsonKind(value any) string {
	switch value.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case json.Number, float64, int:
		return "number"
	case bool:
		return "boolean"
	case string:
		return "string"
	case nil:
		return "null"
	}
	return "unknown"
}
