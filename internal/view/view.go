// Package view holds the embedded HTML templates and the helpers that pick a
// header, footer or block template from its variant.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/blockpress/internal/service"
)

//go:embed templates/*.html
var templateFiles embed.FS

// BlockView is a block ready for rendering: fields are already resolved for one locale.
type BlockView struct {
	ID      uint
	Type    string
	Variant string
	Fields  map[string]interface{}
	Body    template.HTML
	Gallery *service.PublicGallery
}

// Field returns a field as a string, or "" when missing.
func (b BlockView) Field(key string) string {
	value, ok := b.Fields[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Items returns a list field such as the entries of a features block.
func (b BlockView) Items(key string) []map[string]interface{} {
	raw, ok := b.Fields[key].([]interface{})
	if !ok {
		return nil
	}
	items := make([]map[string]interface{}, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items
}

// Renderer owns the parsed template set.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{}
	tmpl, err := template.New("").Funcs(r.funcs()).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Template exposes the parsed set for gin's SetHTMLTemplate.
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"renderHeader": func(variant string, data interface{}) (template.HTML, error) {
			return r.partial(r.HeaderTemplate(variant), data)
		},
		"renderFooter": func(variant string, data interface{}) (template.HTML, error) {
			return r.partial(r.FooterTemplate(variant), data)
		},
		"renderBlock": func(block BlockView) (template.HTML, error) {
			return r.partial(r.BlockTemplate(block.Type, block.Variant), block)
		},
		"join": strings.Join,
		"add": func(a, b int) int {
			return a + b
		},
	}
}

func (r *Renderer) partial(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) has(name string) bool {
	return r.tmpl != nil && r.tmpl.Lookup(name) != nil
}

// HeaderTemplate returns header_<variant>, or header_default for unknown variants.
func (r *Renderer) HeaderTemplate(variant string) string {
	if name := "header_" + strings.ToLower(variant); variant != "" && r.has(name) {
		return name
	}
	return "header_default"
}

// FooterTemplate returns footer_<variant>, or footer_default for unknown variants.
func (r *Renderer) FooterTemplate(variant string) string {
	if name := "footer_" + strings.ToLower(variant); variant != "" && r.has(name) {
		return name
	}
	return "footer_default"
}

// BlockTemplate picks block_<type>_<variant>, then block_<type>, then block_unknown.
func (r *Renderer) BlockTemplate(typ, variant string) string {
	typ = strings.ToLower(typ)
	if variant != "" {
		if name := "block_" + typ + "_" + strings.ToLower(variant); r.has(name) {
			return name
		}
	}
	if name := "block_" + typ; r.has(name) {
		return name
	}
	return "block_unknown"
}
