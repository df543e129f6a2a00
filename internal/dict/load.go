package dict

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

// Record es un registro crudo del backend. Lleva "dictType" más los campos
// de label/value configurables.
type Record map[string]any

// FetchFunc obtiene la lista plana de registros de diccionario.
type FetchFunc func(ctx context.Context, params map[string]any) ([]Record, error)

const (
	DefaultLabelField = "label"
	DefaultValueField = "value"

	typeField      = "dictType"
	colorTypeField = "colorType"
	cssClassField  = "cssClass"
)

// Task es el handle de un refresco en background.
type Task struct {
	done chan struct{}
	err  error
}

// Done se cierra cuando el fetch terminó (con o sin error).
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait bloquea hasta que la tarea termine o ctx se cancele.
// Devuelve el error del fetch, o el del contexto.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err devuelve el error del fetch; nil mientras la tarea sigue corriendo.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// CompletedTask devuelve una tarea ya terminada con err.
func CompletedTask(err error) *Task {
	t := &Task{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

// LoadFromRemote lanza fetch en background y, cuando resuelve, reemplaza el
// cache completo. No bloquea ni propaga errores: un fallo deja el cache como
// estaba y solo se reporta por Hooks.OnRefreshError y el Task.
//
// Llamadas solapadas no se cancelan entre sí: gana el fetch que resuelve último.
// La cancelación de ctx no corta el fetch (se hereda solo su contenido).
func (c *Cache) LoadFromRemote(ctx context.Context, fetch FetchFunc, params map[string]any, labelField, valueField string) *Task {
	if labelField == "" {
		labelField = DefaultLabelField
	}
	if valueField == "" {
		valueField = DefaultValueField
	}
	if fetch == nil {
		return CompletedTask(fmt.Errorf("dict: nil fetch func"))
	}

	bg := context.WithoutCancel(ctx)
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("dict: fetch panic: %v", r)
				c.refreshFailed(t.err)
			}
		}()

		records, err := fetch(bg, params)
		if err != nil {
			t.err = err
			c.refreshFailed(err)
			return
		}

		d := Group(records, labelField, valueField)
		c.Replace(d)
		c.log.Debug("dict refreshed", logger.Count(len(d)))
		if c.hooks.OnRefreshed != nil {
			c.hooks.OnRefreshed(len(d))
		}
		c.persistCurrent(bg)
	}()

	return t
}

func (c *Cache) refreshFailed(err error) {
	c.log.Warn("dict refresh failed", logger.Err(err))
	if c.hooks.OnRefreshError != nil {
		c.hooks.OnRefreshError(err)
	}
}

// Group agrupa registros por dictType respetando el orden de llegada y
// proyecta cada uno a Entry. Registros sin dictType se descartan.
func Group(records []Record, labelField, valueField string) Dict {
	if labelField == "" {
		labelField = DefaultLabelField
	}
	if valueField == "" {
		valueField = DefaultValueField
	}
	out := Dict{}
	for _, r := range records {
		typ := str(r[typeField])
		if typ == "" {
			continue
		}
		out[typ] = append(out[typ], Entry{
			Label:     str(r[labelField]),
			Value:     str(r[valueField]),
			ColorType: str(r[colorTypeField]),
			CSSClass:  str(r[cssClassField]),
		})
	}
	return out
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}
