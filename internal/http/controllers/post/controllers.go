// Package post contiene los controllers de la pantalla de puestos.
package post

import "github.com/dropDatabas3/adminconsole/internal/locales"

// Controllers agrupa todos los controllers del dominio post.
type Controllers struct {
	Post *PostController
}

func NewControllers(bundle *locales.Bundle) *Controllers {
	return &Controllers{Post: NewPostController(bundle)}
}
