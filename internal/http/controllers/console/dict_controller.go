package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/adminconsole/internal/dict"
	httperrors "github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
)

// DictController lectura del cache de diccionarios.
type DictController struct {
	cache *dict.Cache
}

func NewDictController(c *dict.Cache) *DictController {
	return &DictController{cache: c}
}

// Types maneja GET /api/dict
func (c *DictController) Types(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"types": c.cache.Types()})
}

// Entries maneja GET /api/dict/{type}
func (c *DictController) Entries(w http.ResponseWriter, r *http.Request) {
	dictType := chi.URLParam(r, "type")
	entries, ok := c.cache.Get(dictType)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrDictNotFound.WithDetail(dictType))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, entries)
}

// Entry maneja GET /api/dict/{type}/{value}
func (c *DictController) Entry(w http.ResponseWriter, r *http.Request) {
	dictType := chi.URLParam(r, "type")
	value := chi.URLParam(r, "value")
	e, ok := c.cache.Lookup(dictType, value)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrDictNotFound.WithDetail(dictType+"/"+value))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, e)
}
