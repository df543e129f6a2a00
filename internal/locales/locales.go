// Package locales carga los catálogos i18n embebidos (YAML anidado) y
// resuelve claves con notación de puntos ("authentication.loginSuccess").
package locales

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// Translator resuelve una clave. Si la clave no existe devuelve la clave.
type Translator interface {
	T(key string) string
}

// Catalog mensajes aplanados de un locale.
type Catalog struct {
	locale string
	msgs   map[string]string
}

func (c *Catalog) Locale() string { return c.locale }

func (c *Catalog) T(key string) string {
	if c == nil {
		return key
	}
	if v, ok := c.msgs[key]; ok {
		return v
	}
	return key
}

// Bundle todos los catálogos cargados.
type Bundle struct {
	fallback string
	catalogs map[string]*Catalog
}

// Load carga los catálogos embebidos. fallback es el locale por defecto.
func Load(fallback string) (*Bundle, error) {
	entries, err := catalogFS.ReadDir("catalogs")
	if err != nil {
		return nil, fmt.Errorf("locales: read catalogs: %w", err)
	}
	b := &Bundle{fallback: fallback, catalogs: map[string]*Catalog{}}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		raw, err := catalogFS.ReadFile(path.Join("catalogs", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("locales: read %s: %w", e.Name(), err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("locales: parse %s: %w", e.Name(), err)
		}
		loc := strings.TrimSuffix(e.Name(), ".yaml")
		msgs := map[string]string{}
		flatten("", tree, msgs)
		b.catalogs[loc] = &Catalog{locale: loc, msgs: msgs}
	}
	if _, ok := b.catalogs[fallback]; !ok {
		return nil, fmt.Errorf("locales: unknown fallback locale %q", fallback)
	}
	return b, nil
}

// For devuelve el catálogo del locale, o el de fallback si no existe.
func (b *Bundle) For(locale string) *Catalog {
	if c, ok := b.catalogs[locale]; ok {
		return c
	}
	return b.catalogs[b.fallback]
}

// Locales lista ordenada de locales disponibles.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.catalogs))
	for k := range b.catalogs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case map[string]any:
			flatten(key, x, out)
		case nil:
		default:
			out[key] = fmt.Sprint(x)
		}
	}
}
