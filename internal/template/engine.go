// Package template expands Go template placeholders in descriptor start
// and stop options, for example
//
//	start: [-f, '{{ .ExecDir }}/server.cfg', +port, '{{ env "PORT" | default "8303" }}']
//
// The sprig function library is available. Options without "{{" are
// returned untouched.
package template

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders option templates.
type Engine struct {
	funcs template.FuncMap
}

// New creates a new template engine
func New() *Engine {
	return &Engine{funcs: sprig.TxtFuncMap()}
}

// Render expands one value. References to missing keys are errors.
func (e *Engine) Render(value string, data map[string]interface{}) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("option").Funcs(e.funcs).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %w", value, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %q: %w", value, err)
	}
	return b.String(), nil
}

// RenderAll expands every value in order.
func (e *Engine) RenderAll(values []string, data map[string]interface{}) ([]string, error) {
	if values == nil {
		return nil, nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		rendered, err := e.Render(v, data)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		out[i] = rendered
	}
	return out, nil
}
