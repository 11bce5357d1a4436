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

// expects a templateRoot
var modelsTemplate = `// Code generated by goremcli. DO NOT EDIT.

package {{ .Package }}

import (
{{ if .NeedsTime }}	"time"

{{ end }}	"github.com/remlabs/gorem"
)
{{ range .Models }}{{ $m := . }}
// {{ .Name }} maps to the {{ if .Collection }}{{ .Collection }}{{ else }}{{ .Name }}{{ end }} collection
type {{ .Name }} struct {
	gorem.Document
}
{{ if .Collection }}
func (m *{{ .Name }}) CollectionName() string {
	return "{{ .Collection }}"
}
{{ end }}{{ if .Relations }}
func (m *{{ .Name }}) Relations() gorem.Relations {
	return gorem.Relations{
{{ range .Relations }}		"{{ .Name }}": gorem.{{ .Ctor }}(&{{ .Target }}{}, "{{ .Field }}"),
{{ end }}	}
}
{{ end }}{{ range .Fields }}
func (m *{{ $m.Name }}) {{ .Accessor }}() {{ .GoType }} {
	v, _ := m.Get("{{ .Field }}").({{ .GoType }})
	return v
}

func (m *{{ $m.Name }}) Set{{ .Accessor }}(v {{ .GoType }}) *{{ $m.Name }} {
	m.Set("{{ .Field }}", v)
	return m
}
{{ end }}{{ end }}`
