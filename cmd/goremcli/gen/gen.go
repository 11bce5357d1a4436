// Copyright (c) 2023 Remlabs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package gen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/format"
	"os"
	"text/template"
	"unicode"
)

// Schema describes the collections to generate model types for
type Schema struct {
	Package string        `json:"package"`
	Models  []ModelSchema `json:"models"`
}

type ModelSchema struct {
	// Name is the generated struct name
	Name string `json:"name"`
	// Collection overrides the collection name when it differs from Name
	Collection string         `json:"collection"`
	Fields     []FieldSchema  `json:"fields"`
	Relations  []RelationDecl `json:"relations"`
}

type FieldSchema struct {
	// Name is the remote field name, the accessor is its exported form
	Name string `json:"name"`
	// Type is one of string, number, bool, date, array, object, any
	Type string `json:"type"`
}

type RelationDecl struct {
	Name string `json:"name"`
	// Kind is one of belongsTo, hasMany, references
	Kind string `json:"kind"`
	// Target is the related model's struct name
	Target string `json:"target"`
	// Field is the backing remote field, empty uses the convention default
	Field string `json:"field"`
}

var goTypes = map[string]string{
	"string": "string",
	"number": "float64",
	"bool":   "bool",
	"date":   "time.Time",
	"array":  "[]interface{}",
	"object": "map[string]interface{}",
	"any":    "interface{}",
}

var relationCtors = map[string]string{
	"belongsTo":  "BelongsTo",
	"hasMany":    "HasMany",
	"references": "References",
}

// Generate reads the schema file and writes one gofmt'ed source file containing
// every model struct with its relation declarations and typed accessors
func Generate(schemaPath, outPath string) error {
	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema, %w", err)
	}

	var schema Schema
	if err = json.Unmarshal(raw, &schema); err != nil {
		return fmt.Errorf("failed to parse schema, %w", err)
	}

	if err = validate(&schema); err != nil {
		return err
	}

	data, err := templateData(&schema)
	if err != nil {
		return err
	}

	tmpl, err := template.New("models").Parse(modelsTemplate)
	if err != nil {
		return err
	}

	buf := bytes.Buffer{}
	if err = tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template, %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("generated code does not format, %w", err)
	}

	return os.WriteFile(outPath, formatted, 0644)
}

func validate(schema *Schema) error {
	if schema.Package == "" {
		return errors.New("schema must declare a package")
	}

	if len(schema.Models) == 0 {
		return errors.New("schema declares no models")
	}

	names := map[string]bool{}
	for _, m := range schema.Models {
		if m.Name == "" {
			return errors.New("model without a name")
		}
		names[m.Name] = true
	}

	for _, m := range schema.Models {
		for _, f := range m.Fields {
			if _, ok := goTypes[f.Type]; !ok {
				return fmt.Errorf("model %s field %s has unknown type '%s'", m.Name, f.Name, f.Type)
			}
		}

		for _, r := range m.Relations {
			if _, ok := relationCtors[r.Kind]; !ok {
				return fmt.Errorf("model %s relation %s has unknown kind '%s'", m.Name, r.Name, r.Kind)
			}

			if !names[r.Target] {
				return fmt.Errorf("model %s relation %s targets undeclared model '%s'", m.Name, r.Name, r.Target)
			}
		}
	}

	return nil
}

func exportedName(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

type templateModel struct {
	Name       string
	Collection string
	Fields     []templateField
	Relations  []templateRelation
}

type templateField struct {
	Accessor string
	Field    string
	GoType   string
}

type templateRelation struct {
	Name   string
	Ctor   string
	Target string
	Field  string
}

type templateRoot struct {
	Package   string
	NeedsTime bool
	Models    []templateModel
}

func templateData(schema *Schema) (*templateRoot, error) {
	root := &templateRoot{Package: schema.Package}

	for _, m := range schema.Models {
		tm := templateModel{Name: m.Name}
		if m.Collection != "" && m.Collection != m.Name {
			tm.Collection = m.Collection
		}

		for _, f := range m.Fields {
			if f.Type == "date" {
				root.NeedsTime = true
			}

			tm.Fields = append(tm.Fields, templateField{
				Accessor: exportedName(f.Name),
				Field:    f.Name,
				GoType:   goTypes[f.Type],
			})
		}

		for _, r := range m.Relations {
			tm.Relations = append(tm.Relations, templateRelation{
				Name:   r.Name,
				Ctor:   relationCtors[r.Kind],
				Target: r.Target,
				Field:  r.Field,
			})
		}

		root.Models = append(root.Models, tm)
	}

	return root, nil
}
