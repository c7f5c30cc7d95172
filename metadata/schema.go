// Copyright 2025 Tessella Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"fmt"
	"os"
)

// Validation statuses. Warnings never block downstream stages; errors do.
const (
	StatusValid             = "valid"
	StatusValidWithWarnings = "valid_with_warnings"
	StatusInvalid           = "invalid"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindStringList
	kindMap
)

// schema declares the canonical field set. Completeness is measured
// against it and type conformance is checked for every present field.
var schema = map[string]fieldKind{
	"document_id":         kindString,
	"file_path":           kindString,
	"title":               kindString,
	"author":              kindString,
	"creation_date":       kindString,
	"modification_date":   kindString,
	"tags":                kindStringList,
	"category":            kindString,
	"language":            kindString,
	"file_hash":           kindString,
	"processing_metadata": kindMap,
}

var requiredFields = []string{"document_id", "file_path"}

// Validation is the outcome of checking a field map against the schema.
type Validation struct {
	Status          string
	Errors          []string
	Warnings        []string
	FieldCount      int
	RequiredPresent int
}

// Validate checks required-field presence and type conformance. A missing
// source file or a suspiciously short document_id only warns.
func Validate(fields map[string]any) Validation {
	v := Validation{FieldCount: len(fields)}

	for _, field := range requiredFields {
		if !fieldPresent(fields[field]) {
			v.Errors = append(v.Errors, fmt.Sprintf("missing required field: %s", field))
		} else {
			v.RequiredPresent++
		}
	}

	for field, kind := range schema {
		value, ok := fields[field]
		if !ok || value == nil {
			continue
		}
		if !kindMatches(value, kind) {
			v.Errors = append(v.Errors, fmt.Sprintf("wrong type for %s: %T", field, value))
		}
	}

	if path, ok := fields["file_path"].(string); ok && path != "" {
		if _, err := os.Stat(path); err != nil {
			v.Warnings = append(v.Warnings, fmt.Sprintf("source file not accessible: %s", path))
		}
	}
	if id, ok := fields["document_id"].(string); ok && id != "" && len(id) < 10 {
		v.Warnings = append(v.Warnings, "document_id shorter than expected")
	}

	switch {
	case len(v.Errors) > 0:
		v.Status = StatusInvalid
	case len(v.Warnings) > 0:
		v.Status = StatusValidWithWarnings
	default:
		v.Status = StatusValid
	}
	return v
}

// Completeness is the share of schema fields present, in [0,1].
func Completeness(fields map[string]any) float64 {
	present := 0
	for field := range schema {
		if fieldPresent(fields[field]) {
			present++
		}
	}
	return float64(present) / float64(len(schema))
}

func fieldPresent(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func kindMatches(value any, kind fieldKind) bool {
	switch kind {
	case kindString:
		_, ok := value.(string)
		return ok
	case kindStringList:
		_, ok := value.([]string)
		return ok
	case kindMap:
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}
