package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/access"
	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/backend/store"
	"github.com/dropDatabas3/adminconsole/internal/backend/tokens"
	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

// Config dependencias del backend.
type Config struct {
	Store      store.Store
	Issuer     *tokens.Issuer
	RefreshTTL time.Duration
	Logger     *zap.Logger
}

// Server handlers HTTP del backend.
type Server struct {
	store      store.Store
	issuer     *tokens.Issuer
	refreshTTL time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("backend: store is required")
	}
	if cfg.Issuer == nil {
		return nil, errors.New("backend: issuer is required")
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	l := cfg.Logger
	if l == nil {
		l = logger.L()
	}
	return &Server{
		store:      cfg.Store,
		issuer:     cfg.Issuer,
		refreshTTL: cfg.RefreshTTL,
		log:        l.With(logger.Component("backend")),
		now:        time.Now,
	}, nil
}

// Handler arma el router del backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Std(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeFail(w, CodeNotFound, "not found")
	})

	r.Get("/.well-known/jwks.json", s.jwks)

	r.Post(api.PathLogin, s.login)
	r.Post(api.PathLogout, s.logout)
	r.Post(api.PathRefreshToken, s.refresh)

	r.Group(func(g chi.Router) {
		g.Use(s.requireToken)
		g.Get(api.PathPermissionInfo, s.permissionInfo)
		g.Get(api.PathDictSimpleList, s.dictSimpleList)

		g.With(s.requirePermission("system:post:query")).Get(postPath+"/page", s.postPage)
		g.With(s.requirePermission("system:post:query")).Get(postPath+"/get", s.postGet)
		g.With(s.requirePermission("system:post:create")).Post(postPath+"/create", s.postCreate)
		g.With(s.requirePermission("system:post:update")).Put(postPath+"/update", s.postUpdate)
		g.With(s.requirePermission("system:post:delete")).Delete(postPath+"/delete", s.postDelete)
	})
	return r
}

const postPath = "/admin-api/system/post"

type ctxKey int

const ctxUserID ctxKey = iota

func userID(ctx context.Context) int64 {
	v, _ := ctx.Value(ctxUserID).(int64)
	return v
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireToken valida el access token; inválido o vencido responde code 401.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.issuer.Parse(bearer(r))
		if err != nil {
			writeFail(w, CodeUnauthorized, "token invalid or expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, id)))
	})
}

// requirePermission exige el código (o el comodín de super admin).
func (s *Server) requirePermission(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g, err := s.store.Grants(r.Context(), userID(r.Context()))
			if err != nil {
				s.fail(w, r, err)
				return
			}
			for _, p := range g.Permissions {
				if p == code || p == access.SuperCode {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeFail(w, CodeForbidden, "missing permission "+code)
		})
	}
}

// fail traduce errores del store al envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeFail(w, CodeNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeFail(w, CodePostConflict, "post code already exists")
	default:
		logger.From(r.Context()).Error("backend request failed", logger.Err(err))
		writeFail(w, CodeServerError, "internal error")
	}
}

func (s *Server) jwks(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.issuer.Keys.JWKSJSON())
}
