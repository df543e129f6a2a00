// Package post implementa la pantalla de gestión de puestos (岗位): tipos,
// schema declarativo de formularios/grilla, servicio CRUD contra el backend
// y decoración de filas con el diccionario common_status.
package post

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// StatusDictType diccionario que etiqueta el estado.
const StatusDictType = "common_status"

type Post struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Sort       int    `json:"sort"`
	Status     int    `json:"status"`
	Remark     string `json:"remark,omitempty"`
	CreateTime int64  `json:"createTime,omitempty"` // epoch millis
}

// PageParam filtros de la búsqueda paginada.
type PageParam struct {
	PageNo   int    `json:"pageNo"`
	PageSize int    `json:"pageSize"`
	Name     string `json:"name,omitempty"`
	Code     string `json:"code,omitempty"`
	Status   *int   `json:"status,omitempty"`
}

// Normalize aplica defaults de paginación.
func (p PageParam) Normalize() PageParam {
	if p.PageNo <= 0 {
		p.PageNo = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 10
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)
	return p
}

type Page struct {
	List  []Post `json:"list"`
	Total int64  `json:"total"`
}

// SaveReq cuerpo de alta/edición. Sort y Status son punteros para distinguir
// "no enviado" de cero.
type SaveReq struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Sort   *int   `json:"sort"`
	Status *int   `json:"status"`
	Remark string `json:"remark,omitempty"`
}

// ValidationError campos inválidos -> motivo.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "post: invalid fields: " + strings.Join(parts, ", ")
}

// IsValidation reporta si err es un ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StatusSet valores de estado válidos; nil acepta cualquiera.
type StatusSet func(value string) bool

// Validate chequea requeridos (name, code, sort, status) y que el estado
// exista en el diccionario.
func (r *SaveReq) Validate(validStatus StatusSet) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
	r.Remark = strings.TrimSpace(r.Remark)

	bad := map[string]string{}
	if r.Name == "" {
		bad["name"] = "required"
	} else if len([]rune(r.Name)) > 50 {
		bad["name"] = "too long"
	}
	if r.Code == "" {
		bad["code"] = "required"
	} else if len(r.Code) > 64 {
		bad["code"] = "too long"
	}
	if r.Sort == nil {
		bad["sort"] = "required"
	} else if *r.Sort < 0 {
		bad["sort"] = "must be >= 0"
	}
	if r.Status == nil {
		bad["status"] = "required"
	} else if validStatus != nil && !validStatus(strconv.Itoa(*r.Status)) {
		bad["status"] = "unknown value"
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// ToPost arma el Post a enviar al backend. Llamar después de Validate.
func (r SaveReq) ToPost() Post {
	p := Post{ID: r.ID, Name: r.Name, Code: r.Code, Remark: r.Remark}
	if r.Sort != nil {
		p.Sort = *r.Sort
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	return p
}
