// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
	headerStyle = lipgloss.NewStyle().Reverse(true).Padding(0, 2).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	// Rows whose values differ across experiments.
	highlightColor = lipgloss.AdaptiveColor{Light: "9", Dark: "9"}
)

// report is a titled table, one column per experiment (after the label columns).
type report struct {
	title, note string
	table       *lgtable.Table
	highlighted []bool
}

// newReport creates a report with the given headers. Columns are aligned as given, and the last
// alignment holds for the remaining columns. Without alignments, columns are left aligned.
func newReport(title string, headers []string, alignments ...lipgloss.Position) *report {
	r := &report{title: title}
	r.table = lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 {
				return headerStyle
			}
			return r.cellStyle(row).Align(columnAlignment(alignments, col))
		})
	return r
}

func (r *report) cellStyle(row int) lipgloss.Style {
	if row < len(r.highlighted) && r.highlighted[row] {
		return cellStyle.Foreground(highlightColor).Bold(true)
	}
	// Alternate rows are faint.
	return cellStyle.Faint(row%2 == 1)
}

func columnAlignment(alignments []lipgloss.Position, col int) lipgloss.Position {
	switch {
	case len(alignments) == 0:
		return lipgloss.Left
	case col < len(alignments):
		return alignments[col]
	default:
		return alignments[len(alignments)-1]
	}
}

// add appends a row of cells.
func (r *report) add(highlight bool, cells ...string) {
	r.highlighted = append(r.highlighted, highlight)
	r.table.Row(cells...)
}

// addValues appends a row with a label followed by one value per experiment, highlighted if the
// values are not all equal.
func (r *report) addValues(label string, values ...string) {
	r.add(!allEqual(values), append([]string{label}, values...)...)
}

func (r *report) write(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render(r.title))
	if r.note != "" {
		fmt.Fprintln(w, r.note)
	}
	fmt.Fprintln(w, r.table.Render())
}

func allEqual[E comparable](s []E) bool {
	for _, v := range s {
		if v != s[0] {
			return false
		}
	}
	return true
}
