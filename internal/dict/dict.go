// Package dict implementa el cache de diccionarios de la consola: tipos de
// diccionario definidos por el backend (label/value + estilo) usados para
// renderizar selects y badges.
//
// El cache es compartido por todo el proceso. Se reemplaza completo (nunca
// se mergea) y la carga remota corre en background.
package dict

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

// Entry es un ítem de diccionario. Inmutable una vez obtenido.
type Entry struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	ColorType string `json:"colorType,omitempty"`
	CSSClass  string `json:"cssClass,omitempty"`
}

// Dict mapea tipo de diccionario -> entradas ordenadas.
type Dict map[string][]Entry

// Hooks expone los eventos del refresco en background.
// Los errores de refresco no llegan al caller; solo se ven por acá.
type Hooks struct {
	OnRefreshError func(error)
	OnRefreshed    func(types int)
}

// Persister guarda y recupera el cache completo (ej. redis).
type Persister interface {
	SaveDict(ctx context.Context, d Dict) error
	LoadDict(ctx context.Context) (Dict, error)
}

// Options configura un Cache. Todos los campos son opcionales.
type Options struct {
	Hooks     Hooks
	Persister Persister
	Logger    *zap.Logger
}

// Cache es el cache de diccionarios. Seguro para uso concurrente.
type Cache struct {
	cur       atomic.Pointer[Dict]
	hooks     Hooks
	persister Persister
	log       *zap.Logger

	persistMu sync.Mutex
}

// New crea un cache vacío.
func New(opts Options) *Cache {
	l := opts.Logger
	if l == nil {
		l = logger.L()
	}
	c := &Cache{
		hooks:     opts.Hooks,
		persister: opts.Persister,
		log:       l.With(logger.Component("dict")),
	}
	empty := Dict{}
	c.cur.Store(&empty)
	return c
}

// Get devuelve la lista completa del tipo, o false si el tipo no está cargado.
func (c *Cache) Get(dictType string) ([]Entry, bool) {
	d := *c.cur.Load()
	entries, ok := d[dictType]
	if !ok {
		return nil, false
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, true
}

// Lookup devuelve la primera entrada del tipo cuyo Value coincide.
func (c *Cache) Lookup(dictType, value string) (Entry, bool) {
	d := *c.cur.Load()
	for _, e := range d[dictType] {
		if e.Value == value {
			return e, true
		}
	}
	return Entry{}, false
}

// Replace sustituye el mapa completo de forma atómica.
func (c *Cache) Replace(d Dict) {
	cp := cloneDict(d)
	c.cur.Store(&cp)
}

// Snapshot devuelve una copia del contenido actual.
func (c *Cache) Snapshot() Dict {
	return cloneDict(*c.cur.Load())
}

// Types devuelve los tipos cargados, ordenados.
func (c *Cache) Types() []string {
	d := *c.cur.Load()
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len cantidad de tipos cargados.
func (c *Cache) Len() int {
	return len(*c.cur.Load())
}

// Restore carga el cache persistido (si hay Persister). Un cache vacío o
// inexistente no es error.
func (c *Cache) Restore(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}
	d, err := c.persister.LoadDict(ctx)
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	c.Replace(d)
	c.log.Debug("dict restored", logger.Count(len(d)))
	return nil
}

// persistCurrent guarda lo que esté vigente en ese momento, no el mapa que
// disparó la llamada. Así el último persist siempre refleja el último Replace.
func (c *Cache) persistCurrent(ctx context.Context) {
	if c.persister == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if err := c.persister.SaveDict(ctx, *c.cur.Load()); err != nil {
		c.log.Warn("dict persist failed", logger.Err(err))
	}
}

func cloneDict(d Dict) Dict {
	out := make(Dict, len(d))
	for k, v := range d {
		entries := make([]Entry, len(v))
		copy(entries, v)
		out[k] = entries
	}
	return out
}
