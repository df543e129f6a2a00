// Package router contiene la tabla de rutas de la consola, el navegador por
// workspace y el guard de acceso que decide si una ruta se puede visitar.
package router

import (
	"net/url"
	"strings"
)

const (
	LoginPath     = "/auth/login"
	ForbiddenPath = "/403"
	NotFoundPath  = "/404"

	// RedirectParam query param con la ruta a la que volver tras el login.
	RedirectParam = "redirect"
)

// Route metadata de una ruta de la consola.
type Route struct {
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"` // clave i18n
	AccessCodes []string `json:"accessCodes,omitempty"`
	Public      bool     `json:"public,omitempty"`
}

// Table rutas registradas, indexadas por path.
type Table struct {
	byPath map[string]Route
	order  []string
}

// NewTable arma la tabla. Paths duplicados: gana el último.
func NewTable(routes ...Route) *Table {
	t := &Table{byPath: map[string]Route{}}
	for _, r := range routes {
		p := cleanPath(r.Path)
		r.Path = p
		if _, dup := t.byPath[p]; !dup {
			t.order = append(t.order, p)
		}
		t.byPath[p] = r
	}
	return t
}

// DefaultRoutes tabla base de la consola. homePath es la home configurada.
func DefaultRoutes(loginPath, homePath string) *Table {
	if loginPath == "" {
		loginPath = LoginPath
	}
	return NewTable(
		Route{Path: loginPath, Name: "Login", Title: "page.auth.login", Public: true},
		Route{Path: homePath, Name: "Analytics", Title: "page.dashboard.analytics"},
		Route{Path: "/system/post", Name: "SystemPost", Title: "page.system.post", AccessCodes: []string{"system:post:query"}},
		Route{Path: ForbiddenPath, Name: "Forbidden", Title: "page.error.forbidden", Public: true},
		Route{Path: NotFoundPath, Name: "NotFound", Title: "page.error.notFound", Public: true},
	)
}

// Match busca la ruta exacta; si no existe devuelve la de 404 (si está
// registrada) y false.
func (t *Table) Match(path string) (Route, bool) {
	if r, ok := t.byPath[cleanPath(path)]; ok {
		return r, true
	}
	nf, ok := t.byPath[NotFoundPath]
	if !ok {
		nf = Route{Path: NotFoundPath, Name: "NotFound", Public: true}
	}
	return nf, false
}

// All devuelve las rutas en orden de registro.
func (t *Table) All() []Route {
	out := make([]Route, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.byPath[p])
	}
	return out
}

// Location destino de navegación.
type Location struct {
	Path  string     `json:"path"`
	Query url.Values `json:"query,omitempty"`
}

// FullPath path + query codificada.
func (l Location) FullPath() string {
	p := l.Path
	if p == "" {
		p = "/"
	}
	if len(l.Query) == 0 {
		return p
	}
	return p + "?" + l.Query.Encode()
}

// ParseLocation parsea "/path?a=b".
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	loc := Location{Path: cleanPath(u.Path)}
	if q := u.Query(); len(q) > 0 {
		loc.Query = q
	}
	return loc, nil
}

// LoginLocation destino de login. Con from no vacío agrega redirect con la
// ruta de origen codificada (una vez decodificado el valor es from).
func LoginLocation(loginPath, from string) Location {
	loc := Location{Path: loginPath}
	if from != "" {
		loc.Query = url.Values{RedirectParam: {url.QueryEscape(from)}}
	}
	return loc
}

// RedirectTarget decodifica el redirect de una Location de login.
func RedirectTarget(loc Location) (string, bool) {
	raw := loc.Query.Get(RedirectParam)
	if raw == "" {
		return "", false
	}
	v, err := url.QueryUnescape(raw)
	if err != nil || !strings.HasPrefix(v, "/") {
		return "", false
	}
	return v, true
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
