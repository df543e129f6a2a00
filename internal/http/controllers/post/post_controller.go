package post

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
	"github.com/dropDatabas3/adminconsole/internal/locales"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/post"
)

// PostController CRUD de puestos contra el backend del workspace.
type PostController struct {
	bundle *locales.Bundle
}

func NewPostController(bundle *locales.Bundle) *PostController {
	return &PostController{bundle: bundle}
}

// Schema maneja GET /api/system/post/schema
func (c *PostController) Schema(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	var tr locales.Translator = identity{}
	if c.bundle != nil {
		tr = c.bundle.For(helpers.Locale(r))
	}
	helpers.WriteJSON(w, http.StatusOK, post.BuildSchema(tr, ws.Posts.Dict()))
}

// List maneja GET /api/system/post?pageNo=&pageSize=&name=&code=&status=
func (c *PostController) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	p := post.PageParam{Name: q.Get("name"), Code: q.Get("code")}

	for key, dst := range map[string]*int{"pageNo": &p.PageNo, "pageSize": &p.PageSize} {
		v, ok := helpers.QueryInt(r, key)
		if !ok {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(key))
			return
		}
		if v != nil {
			*dst = *v
		}
	}
	status, ok := helpers.QueryInt(r, "status")
	if !ok {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("status"))
		return
	}
	p.Status = status

	page, err := ws.Posts.List(r.Context(), p)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, page)
}

// Get maneja GET /api/system/post/{id}
func (c *PostController) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := ws.Posts.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, row)
}

// Create maneja POST /api/system/post
func (c *PostController) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	var req post.SaveReq
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	id, err := ws.Posts.Create(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Update maneja PUT /api/system/post/{id}
func (c *PostController) Update(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req post.SaveReq
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.ID = id
	if err := ws.Posts.Update(r.Context(), req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete maneja DELETE /api/system/post/{id}
func (c *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ws.Posts.Delete(r.Context(), id); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	logger.From(r.Context()).Info("post deleted", logger.Layer("controller"), logger.ID(strconv.FormatInt(id, 10)))
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("id"))
		return 0, false
	}
	return id, true
}

type identity struct{}

func (identity) T(k string) string { return k }
