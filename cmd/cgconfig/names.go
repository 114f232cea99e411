// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/xslices"
)

// uniqueNames returns, for each path, its shortest trailing part (in whole path elements) that
// tells it apart from the other paths. Used as column headers.
func uniqueNames(paths ...string) []string {
	split := xslices.Map(paths, func(path string) []string {
		return strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	})
	names := make([]string, len(paths))
	for ii, parts := range split {
		for n := 1; n <= len(parts); n++ {
			names[ii] = strings.Join(parts[len(parts)-n:], "/")
			if !sharesSuffix(split, ii, n) {
				break
			}
		}
	}
	return names
}

// sharesSuffix returns whether any other path ends with the same n elements as split[idx].
func sharesSuffix(split [][]string, idx, n int) bool {
	suffix := split[idx][len(split[idx])-n:]
	for jj, other := range split {
		if jj == idx || len(other) < n {
			continue
		}
		if slices.Equal(other[len(other)-n:], suffix) {
			return true
		}
	}
	return false
}
