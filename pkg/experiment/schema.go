// Copyright 2026 The RSMI-NE Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"bytes"
	_ "embed"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SchemaJSON is the JSON schema of an experiment document: it checks presence and type of
// every field, and rejects unknown keys. Value ranges are checked by Experiment.Validate.
//
//go:embed experiment.schema.json
var SchemaJSON []byte

const schemaURL = "experiment.schema.json"

var (
	compileSchemaOnce sync.Once
	compiledSchema    *jsonschema.Schema
	compileSchemaErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(SchemaJSON))
		if err != nil {
			compileSchemaErr = errors.Wrap(err, "failed to parse embedded experiment schema")
			return
		}
		compiler := jsonschema.NewCompiler()
		if err = compiler.AddResource(schemaURL, doc); err != nil {
			compileSchemaErr = errors.Wrap(err, "failed to add embedded experiment schema")
			return
		}
		compiledSchema, compileSchemaErr = compiler.Compile(schemaURL)
		if compileSchemaErr != nil {
			compileSchemaErr = errors.Wrap(compileSchemaErr, "failed to compile embedded experiment schema")
		}
	})
	return compiledSchema, compileSchemaErr
}

// validateSchema checks the generic document (as decoded with json.Decoder.UseNumber) against
// SchemaJSON, converting failures to a *ValidationError.
func validateSchema(doc any) error {
	sch, err := schema()
	if err != nil {
		return err
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	var schemaErr *jsonschema.ValidationError
	if !errors.As(err, &schemaErr) {
		return errors.Wrap(err, "failed to validate experiment document")
	}
	v := &validator{}
	printer := message.NewPrinter(language.English)
	collectSchemaErrors(v, doc, schemaErr, printer)
	if len(v.errs) == 0 {
		// Should not happen, but never let an invalid document through.
		v.add("", "", nil, "%s", schemaErr.Error())
	}
	return v.err()
}

// collectSchemaErrors walks down to the leaf causes, which are the ones carrying the
// offending instance location.
func collectSchemaErrors(v *validator, doc any, schemaErr *jsonschema.ValidationError, printer *message.Printer) {
	if len(schemaErr.Causes) > 0 {
		for _, cause := range schemaErr.Causes {
			collectSchemaErrors(v, doc, cause, printer)
		}
		return
	}
	loc := schemaErr.InstanceLocation
	switch k := schemaErr.ErrorKind.(type) {
	case *kind.Required:
		for _, missing := range k.Missing {
			group, field := splitLocation(append(append([]string(nil), loc...), missing))
			if field == "" {
				v.add(group, "", nil, "missing required group")
			} else {
				v.add(group, field, nil, "missing required field")
			}
		}
	case *kind.AdditionalProperties:
		for _, unknown := range k.Properties {
			group, field := splitLocation(append(append([]string(nil), loc...), unknown))
			v.add(group, field, nil, "unknown key")
		}
	default:
		group, field := splitLocation(loc)
		value, _ := lookup(doc, loc)
		v.add(group, field, value, "%s", schemaErr.ErrorKind.LocalizedString(printer))
	}
}

// splitLocation splits an instance location into the top-level group and the dotted path of
// the field inside it.
func splitLocation(loc []string) (group, field string) {
	if len(loc) == 0 {
		return "", ""
	}
	return loc[0], strings.Join(loc[1:], ".")
}

// lookup returns the value at the given location of a generic document.
func lookup(doc any, loc []string) (any, bool) {
	current := doc
	for _, key := range loc {
		switch node := current.(type) {
		case map[string]any:
			var ok bool
			current, ok = node[key]
			if !ok {
				return nil, false
			}
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
