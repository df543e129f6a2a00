// Package console contiene los controllers de estado de la consola:
// diccionarios, navegación con guard y notificaciones.
package console

import (
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/locales"
	"github.com/dropDatabas3/adminconsole/internal/router"
)

// Deps dependencias compartidas.
type Deps struct {
	Dict         *dict.Cache
	Routes       *router.Table
	Locales      *locales.Bundle
	AppName      string
	LoginPath    string
	DynamicTitle bool

	EnableRefreshToken bool
	CompanyName        string
	CompanySite        string
}

// Controllers agrupa todos los controllers del dominio console.
type Controllers struct {
	Dict        *DictController
	Route       *RouteController
	Notices     *NoticesController
	Preferences *PreferencesController
}

func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Dict:        NewDictController(d.Dict),
		Route:       NewRouteController(d),
		Notices:     NewNoticesController(),
		Preferences: NewPreferencesController(d),
	}
}
