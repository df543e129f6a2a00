package post

import (
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/locales"
)

// DictReader lectura del cache de diccionarios.
type DictReader interface {
	Get(dictType string) ([]dict.Entry, bool)
	Lookup(dictType, value string) (dict.Entry, bool)
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Field campo de formulario.
type Field struct {
	Component   string   `json:"component"`
	FieldName   string   `json:"fieldName"`
	Label       string   `json:"label"`
	Rules       string   `json:"rules,omitempty"`
	Hidden      bool     `json:"hidden,omitempty"`
	AllowClear  bool     `json:"allowClear,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

type CellRender struct {
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// Column columna de la grilla.
type Column struct {
	Field      string      `json:"field,omitempty"`
	Title      string      `json:"title"`
	Type       string      `json:"type,omitempty"`
	Width      int         `json:"width,omitempty"`
	Fixed      string      `json:"fixed,omitempty"`
	Formatter  string      `json:"formatter,omitempty"`
	Slot       string      `json:"slot,omitempty"`
	CellRender *CellRender `json:"cellRender,omitempty"`
}

// Schema formulario de búsqueda, columnas y formulario del modal.
type Schema struct {
	Search  []Field  `json:"search"`
	Columns []Column `json:"columns"`
	Modal   []Field  `json:"modal"`
}

// StatusOptions opciones del select de estado desde common_status.
// Vacío si el diccionario todavía no cargó.
func StatusOptions(d DictReader) []Option {
	entries, ok := d.Get(StatusDictType)
	if !ok {
		return []Option{}
	}
	out := make([]Option, 0, len(entries))
	for _, e := range entries {
		out = append(out, Option{Label: e.Label, Value: e.Value})
	}
	return out
}

// BuildSchema arma el schema traducido. Las opciones de estado salen del
// diccionario vigente al momento de la llamada.
func BuildSchema(tr locales.Translator, d DictReader) Schema {
	status := StatusOptions(d)
	return Schema{
		Search: []Field{
			{Component: "Input", FieldName: "name", Label: tr.T("post.name")},
			{Component: "Input", FieldName: "code", Label: tr.T("post.code")},
			{
				Component:   "Select",
				FieldName:   "status",
				Label:       tr.T("post.status"),
				AllowClear:  true,
				Placeholder: tr.T("post.placeholder"),
				Options:     status,
			},
		},
		Columns: []Column{
			{Title: tr.T("post.seq"), Type: "seq", Width: 50},
			{Field: "id", Title: tr.T("post.id")},
			{Field: "name", Title: tr.T("post.name")},
			{Field: "code", Title: tr.T("post.code")},
			{Field: "sort", Title: tr.T("post.sort")},
			{Field: "remark", Title: tr.T("post.remark")},
			{
				Field:      "status",
				Title:      tr.T("post.status"),
				CellRender: &CellRender{Name: "CellDict", Props: map[string]any{"type": StatusDictType}},
			},
			{Field: "createTime", Title: tr.T("post.createTime"), Formatter: "formatDateTime"},
			{Field: "action", Title: tr.T("page.action.action"), Fixed: "right", Slot: "action", Width: 160},
		},
		Modal: []Field{
			{Component: "Input", FieldName: "id", Label: "id", Hidden: true},
			{Component: "Input", FieldName: "name", Label: tr.T("post.name"), Rules: "required"},
			{Component: "Input", FieldName: "code", Label: tr.T("post.code"), Rules: "required"},
			{Component: "InputNumber", FieldName: "sort", Label: tr.T("post.sort"), Rules: "required"},
			{Component: "Select", FieldName: "status", Label: tr.T("post.status"), Rules: "required", Options: status},
			{Component: "Textarea", FieldName: "remark", Label: tr.T("post.remark")},
		},
	}
}
