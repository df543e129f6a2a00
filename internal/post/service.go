package post

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

const basePath = "/admin-api/system/post"

// Requester ejecuta llamadas al backend (lo implementa *api.Client).
type Requester interface {
	Do(ctx context.Context, req api.Request, out any) error
}

// Service CRUD de puestos contra el backend.
type Service struct {
	api  Requester
	dict DictReader
}

func NewService(r Requester, d DictReader) *Service {
	return &Service{api: r, dict: d}
}

// Dict lector de diccionarios con el que decora filas y arma el schema.
func (s *Service) Dict() DictReader { return s.dict }

// Row post + etiqueta/color del estado resueltos con el diccionario.
type Row struct {
	Post
	StatusLabel string `json:"statusLabel,omitempty"`
	StatusColor string `json:"statusColor,omitempty"`
}

type RowPage struct {
	List  []Row `json:"list"`
	Total int64 `json:"total"`
}

func (s *Service) List(ctx context.Context, p PageParam) (*RowPage, error) {
	p = p.Normalize()
	q := url.Values{
		"pageNo":   {strconv.Itoa(p.PageNo)},
		"pageSize": {strconv.Itoa(p.PageSize)},
	}
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	if p.Code != "" {
		q.Set("code", p.Code)
	}
	if p.Status != nil {
		q.Set("status", strconv.Itoa(*p.Status))
	}
	var page Page
	if err := s.api.Do(ctx, api.Request{Method: http.MethodGet, Path: basePath + "/page", Query: q}, &page); err != nil {
		return nil, err
	}
	return &RowPage{List: Decorate(page.List, s.dict), Total: page.Total}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Row, error) {
	var p Post
	q := url.Values{"id": {strconv.FormatInt(id, 10)}}
	if err := s.api.Do(ctx, api.Request{Method: http.MethodGet, Path: basePath + "/get", Query: q}, &p); err != nil {
		return nil, err
	}
	rows := Decorate([]Post{p}, s.dict)
	return &rows[0], nil
}

// Create valida y crea. Devuelve el id asignado.
func (s *Service) Create(ctx context.Context, req SaveReq) (int64, error) {
	if err := req.Validate(s.validStatus()); err != nil {
		return 0, err
	}
	p := req.ToPost()
	p.ID = 0
	var id int64
	if err := s.api.Do(ctx, api.Request{Method: http.MethodPost, Path: basePath + "/create", Body: p}, &id); err != nil {
		return 0, err
	}
	logger.From(ctx).Info("post created", logger.Layer("service"), logger.Op("post.create"), logger.ID(strconv.FormatInt(id, 10)))
	return id, nil
}

func (s *Service) Update(ctx context.Context, req SaveReq) error {
	if req.ID <= 0 {
		return &ValidationError{Fields: map[string]string{"id": "required"}}
	}
	if err := req.Validate(s.validStatus()); err != nil {
		return err
	}
	return s.api.Do(ctx, api.Request{Method: http.MethodPut, Path: basePath + "/update", Body: req.ToPost()}, nil)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("post: invalid id")
	}
	q := url.Values{"id": {strconv.FormatInt(id, 10)}}
	return s.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: basePath + "/delete", Query: q}, nil)
}

// validStatus con el diccionario sin cargar no restringe.
func (s *Service) validStatus() StatusSet {
	if _, ok := s.dict.Get(StatusDictType); !ok {
		return nil
	}
	return func(v string) bool {
		_, ok := s.dict.Lookup(StatusDictType, v)
		return ok
	}
}

// Decorate agrega statusLabel/statusColor. Si el valor no está en el
// diccionario las filas quedan sin etiqueta.
func Decorate(posts []Post, d DictReader) []Row {
	out := make([]Row, 0, len(posts))
	for _, p := range posts {
		r := Row{Post: p}
		if e, ok := d.Lookup(StatusDictType, strconv.Itoa(p.Status)); ok {
			r.StatusLabel = e.Label
			r.StatusColor = e.ColorType
		}
		out = append(out, r)
	}
	return out
}
