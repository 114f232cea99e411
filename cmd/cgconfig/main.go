// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

// cgconfig loads, validates and reports on RSMI coarse-graining experiment files.
//
// Usage:
//
//	cgconfig [flags] <experiment.json> [<other.yaml> ...]
//
// Every file is validated (with the -set overrides applied), and the program exits with an error
// listing the offending fields of the first invalid one. With several files, the reports show
// them side by side, highlighting the hyperparameters that differ.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/janpfeifer/must"
	"github.com/rsmi-ne/cgconfig/pkg/experiment"
	"k8s.io/klog/v2"
)

var (
	flagSettings = flag.String("set", "", "Overrides applied to every experiment before validation, e.g. "+
		"\"opt_params/learning_rate=1e-3;cg_params/ll=4,4\". Use \"file:<path>\" to read them from a file.")
	flagSummary = flag.Bool("summary", false, "Display a summary of the physical system and the "+
		"coarse-graining network. This is the default if no other report is selected.")
	flagParams     = flag.Bool("params", false, "Lists the hyperparameters, as set in a GoMLX context.")
	flagEstimators = flag.Bool("estimators", false, "Lists the mutual-information estimators.")
	flagSchedule   = flag.Int("schedule", 0, "If > 0, lists the annealed Gumbel-softmax temperature at "+
		"this number of points over the training iterations.")
	flagOut = flag.String("out", "", "Writes the (validated and overridden) experiment to this path. "+
		"The format is given by the extension (.json, .yaml or .yml). Only one input file is accepted.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		klog.Errorf("Missing experiment file(s) to read. See 'cgconfig -help'.")
		os.Exit(1)
	}
	if *flagOut != "" && len(paths) > 1 {
		klog.Errorf("-out requires exactly one experiment file, got %d. See 'cgconfig -help'.", len(paths))
		os.Exit(1)
	}

	exps := make([]*experiment.Experiment, len(paths))
	for ii, path := range paths {
		exp, err := experiment.NewLoader().WithSettings(*flagSettings).LoadFile(path)
		if err != nil {
			klog.Errorf("%v", err)
			os.Exit(1)
		}
		exps[ii] = exp
	}
	names := uniqueNames(paths...)

	if !*flagParams && !*flagEstimators && *flagSchedule <= 0 && *flagOut == "" {
		*flagSummary = true
	}
	out := os.Stdout
	if *flagSummary {
		Summary(out, exps, names)
	}
	if *flagParams {
		Params(out, exps, names)
	}
	if *flagEstimators {
		Estimators(out, exps, names)
	}
	if *flagSchedule > 0 {
		Schedules(out, exps, names, *flagSchedule)
	}
	if *flagOut != "" {
		must.M(experiment.Save(*flagOut, exps[0]))
		fmt.Fprintf(out, "Experiment saved to %q\n", *flagOut)
	}
}
