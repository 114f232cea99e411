// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FilePermMode is the permission (before umask) of files written by Save.
var FilePermMode = os.FileMode(0644)

// Marshal serializes the experiment in the given format. Optional fields that are not set are
// omitted, so Parse(Marshal(e)) yields a value equal to e.
func Marshal(e *Experiment, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode experiment as JSON")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return nil, errors.Wrap(err, "failed to encode experiment as YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to encode experiment as YAML")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Errorf("unknown experiment format %d", format)
}

// Save validates the experiment and writes it atomically to path, in the format given by the
// file extension.
func Save(path string, e *Experiment) error {
	if err := e.Validate(); err != nil {
		return errors.WithMessagef(err, "refusing to save experiment to %q", path)
	}
	path, err := fsutil.ReplaceTildeInDir(path)
	if err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(e, format)
	if err != nil {
		return err
	}
	if err = renameio.WriteFile(path, data, FilePermMode); err != nil {
		return errors.Wrapf(err, "failed to write experiment to %q", path)
	}
	return nil
}
