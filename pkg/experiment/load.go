// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/pkg/errors"
	"github.com/rsmi-ne/cgconfig/pkg/settings"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Format of an experiment document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFromPath returns the format implied by the file extension: ".json", ".yaml" or ".yml".
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatJSON, errors.Errorf("unsupported experiment file extension %q in %q (use .json, .yaml or .yml)", ext, path)
	}
}

// Loader parses and validates experiment documents. Create it with NewLoader, configure it
// with its methods and then call Parse, Load or LoadFile.
//
// A Loader holds no state between loads, and can be reused.
type Loader struct {
	name     string
	settings string
}

// NewLoader returns a Loader with no overrides.
func NewLoader() *Loader {
	return &Loader{}
}

// WithName sets the name of the experiment used in log and error messages. LoadFile defaults it
// to the file path.
func (l *Loader) WithName(name string) *Loader {
	l.name = name
	return l
}

// WithSettings sets overrides applied to the document before it is validated, in the format
// accepted by settings.Apply: e.g. "opt_params/learning_rate=1e-3;cg_params/ll=4,4".
func (l *Loader) WithSettings(s string) *Loader {
	l.settings = s
	return l
}

// Parse decodes, overrides and validates an experiment document.
//
// Failures are either decoding errors or a *ValidationError naming each offending group and
// field. No partial result is returned.
func (l *Loader) Parse(data []byte, format Format) (*Experiment, error) {
	name := l.name
	if name == "" {
		name = "<unnamed>"
	}
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to decode experiment %q", name)
	}
	if l.settings != "" {
		paramsSet, err := settings.Apply(doc, l.settings)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to apply settings to experiment %q", name)
		}
		klog.V(1).Infof("Experiment %q: settings overridden for %v", name, paramsSet)
	}
	if err = validateSchema(doc); err != nil {
		return nil, err
	}
	exp, err := decodeTyped(doc)
	if err != nil {
		return nil, err
	}
	if err = exp.Validate(); err != nil {
		return nil, err
	}
	klog.V(1).Infof("Experiment %q: model=%s L=%d T=%g, %d estimator(s)",
		name, exp.Data.Model, exp.Data.L, exp.Data.T, len(exp.Estimators))
	return exp, nil
}

// Load reads the whole of r and parses it.
func (l *Loader) Load(r io.Reader, format Format) (*Experiment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read experiment")
	}
	return l.Parse(data, format)
}

// LoadFile loads the experiment stored in path. The format is taken from the file extension,
// and a leading "~" is expanded to the user's home directory.
func (l *Loader) LoadFile(path string) (*Experiment, error) {
	path, err := fsutil.ReplaceTildeInDir(path)
	if err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read experiment file %q", path)
	}
	if l.name == "" {
		named := *l
		named.name = path
		return named.Parse(data, format)
	}
	return l.Parse(data, format)
}

// Parse is a shortcut for NewLoader().Parse(data, format).
func Parse(data []byte, format Format) (*Experiment, error) {
	return NewLoader().Parse(data, format)
}

// LoadFile is a shortcut for NewLoader().LoadFile(path).
func LoadFile(path string) (*Experiment, error) {
	return NewLoader().LoadFile(path)
}

// decodeDocument decodes data into a generic document, with numbers kept as json.Number.
// YAML documents are normalized to the same representation.
func decodeDocument(data []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatJSON:
	case FormatYAML:
		var err error
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unknown experiment format %d", format)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty document")
		}
		return nil, errors.Wrap(err, "malformed JSON")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("document has trailing content after the top-level object")
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, errors.Errorf("document must be an object with the groups %q, got %T", Groups, doc)
	}
	return m, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty document")
		}
		return nil, errors.Wrap(err, "malformed YAML")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("YAML contains multiple documents or trailing content")
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "YAML document can't be represented as JSON (non-string keys?)")
	}
	return converted, nil
}

// decodeTyped converts the (already schema validated) generic document to an Experiment.
func decodeTyped(doc map[string]any) (*Experiment, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to re-encode experiment document")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	exp := &Experiment{}
	if err = dec.Decode(exp); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			group, field, _ := strings.Cut(typeErr.Field, ".")
			v := &validator{}
			v.add(group, field, typeErr.Value, "expected %s", typeErr.Type)
			return nil, v.err()
		}
		return nil, errors.Wrap(err, "failed to decode experiment")
	}
	return exp, nil
}
