// Package validation reglas de forma para identificadores que viajan entre la
// consola y el backend admin.
package validation

import "regexp"

// Access codes ("system:post:query"):
// - Segmentos separados por ":", al menos uno.
// - Cada segmento es "*" o [a-z0-9] con [a-z0-9_-] en el medio.
// - Longitud total 1..128.
//
// Válidos: system:post:query, *:*:*, monitor:job-log:export
// Inválidos: "", System:post, system::post, :post, post:, "a b"
var accessCodeRe = regexp.MustCompile(`^(\*|[a-z0-9](?:[a-z0-9_-]*[a-z0-9])?)(:(\*|[a-z0-9](?:[a-z0-9_-]*[a-z0-9])?))*$`)

// Post codes ("ceo", "project_manager"): alfanumérico con "_" o "-", 1..64.
var postCodeRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]{0,62}[A-Za-z0-9])?$`)

// ValidAccessCode reporta si code tiene forma de código de permiso.
func ValidAccessCode(code string) bool {
	return len(code) <= 128 && accessCodeRe.MatchString(code)
}

// ValidPostCode reporta si code es un código de puesto aceptable.
func ValidPostCode(code string) bool {
	return postCodeRe.MatchString(code)
}
