// Package console administra los workspaces: el estado de servidor de cada
// navegador (stores, navegador, notificaciones, flujo de auth y cliente del
// backend), indexado por el id de la cookie de sesión.
package console

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/adminconsole/internal/access"
	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/locales"
	"github.com/dropDatabas3/adminconsole/internal/notify"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/router"
	"github.com/dropDatabas3/adminconsole/internal/stores"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

// Workspace estado de un navegador.
type Workspace struct {
	ID        string
	Access    *access.Store
	User      *user.Store
	Stores    *stores.Registry
	Navigator *router.Navigator
	Notices   *notify.Queue
	API       *api.Client
	Flow      *auth.Flow
	Posts     *post.Service
	CreatedAt time.Time
}

// Config parámetros compartidos por todos los workspaces.
type Config struct {
	TTL     time.Duration
	Backend api.Config

	DefaultHomePath string
	LoginPath       string
	DictParams      map[string]any
	DictLabelField  string
	DictValueField  string
	ExclusiveLogin  bool
}

// Deps colaboradores compartidos. Persistence es opcional.
type Deps struct {
	Dict        *dict.Cache
	Translator  locales.Translator
	Persistence *stores.Persistence
	AuthHooks   auth.Hooks
	Logger      *zap.Logger

	// OnActive recibe la cantidad de workspaces vivos tras cada alta/baja.
	OnActive func(n int)
}

// Manager tabla de workspaces con expiración por inactividad.
type Manager struct {
	cfg   Config
	deps  Deps
	table *gocache.Cache
	sf    singleflight.Group
	log   *zap.Logger
}

var ErrNoDict = errors.New("console: dict cache is required")

func NewManager(cfg Config, deps Deps) (*Manager, error) {
	if deps.Dict == nil {
		return nil, ErrNoDict
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Backend.HTTP == nil {
		timeout := cfg.Backend.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		cfg.Backend.HTTP = &http.Client{Timeout: timeout}
	}
	l := deps.Logger
	if l == nil {
		l = logger.L()
	}
	m := &Manager{
		cfg:   cfg,
		deps:  deps,
		table: gocache.New(cfg.TTL, time.Minute),
		log:   l.With(logger.Component("workspaces")),
	}
	m.table.OnEvicted(func(id string, _ any) {
		m.log.Debug("workspace evicted", logger.WorkspaceID(id))
		m.reportActive()
	})
	return m, nil
}

// Create arma un workspace nuevo con id aleatorio.
func (m *Manager) Create(ctx context.Context) (*Workspace, error) {
	ws, err := m.build(uuid.NewString())
	if err != nil {
		return nil, err
	}
	m.table.SetDefault(ws.ID, ws)
	m.reportActive()
	logger.From(ctx).Debug("workspace created", logger.WorkspaceID(ws.ID))
	return ws, nil
}

// Get busca el workspace; si no está en memoria intenta restaurarlo de la
// persistencia. Cada acceso renueva el TTL.
func (m *Manager) Get(ctx context.Context, id string) (*Workspace, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	if v, ok := m.table.Get(id); ok {
		ws := v.(*Workspace)
		m.table.SetDefault(id, ws)
		return ws, true
	}
	if m.deps.Persistence == nil {
		return nil, false
	}

	v, err, _ := m.sf.Do(id, func() (any, error) {
		if v, ok := m.table.Get(id); ok {
			return v, nil
		}
		ws, err := m.build(id)
		if err != nil {
			return nil, err
		}
		found, err := m.deps.Persistence.Load(ctx, id, ws.Stores)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		m.table.SetDefault(id, ws)
		m.reportActive()
		logger.From(ctx).Debug("workspace restored", logger.WorkspaceID(id))
		return ws, nil
	})
	if err != nil {
		logger.From(ctx).Warn("workspace restore failed", logger.WorkspaceID(id), logger.Err(err))
		return nil, false
	}
	ws, ok := v.(*Workspace)
	return ws, ok && ws != nil
}

// Resolve devuelve el workspace de id o crea uno nuevo.
func (m *Manager) Resolve(ctx context.Context, id string) (ws *Workspace, created bool, err error) {
	if id != "" {
		if ws, ok := m.Get(ctx, id); ok {
			return ws, false, nil
		}
	}
	ws, err = m.Create(ctx)
	return ws, true, err
}

// Save persiste los stores del workspace (no-op sin persistencia). Los
// errores se loguean y no se propagan.
func (m *Manager) Save(ctx context.Context, ws *Workspace) {
	if m.deps.Persistence == nil {
		return
	}
	if err := m.deps.Persistence.Save(ctx, ws.ID, ws.Stores); err != nil {
		logger.From(ctx).Warn("workspace persist failed", logger.WorkspaceID(ws.ID), logger.Err(err))
	}
}

// Delete elimina el workspace de memoria y de la persistencia.
func (m *Manager) Delete(ctx context.Context, id string) {
	m.table.Delete(id)
	if m.deps.Persistence != nil {
		if err := m.deps.Persistence.Delete(ctx, id); err != nil {
			logger.From(ctx).Warn("workspace delete failed", logger.WorkspaceID(id), logger.Err(err))
		}
	}
	m.reportActive()
}

// Count workspaces vivos en memoria.
func (m *Manager) Count() int {
	return m.table.ItemCount()
}

// Close vacía la tabla (sin disparar OnEvicted).
func (m *Manager) Close() {
	m.table.Flush()
}

func (m *Manager) build(id string) (*Workspace, error) {
	acc := access.NewStore()
	usr := user.NewStore()
	reg := stores.NewRegistry(acc, usr)
	nav := router.NewNavigator(router.Location{Path: m.cfg.LoginPath})
	queue := notify.NewQueue(0)

	bcfg := m.cfg.Backend
	bcfg.Logger = m.log.With(logger.WorkspaceID(id))
	client := api.New(bcfg, acc)

	flow, err := auth.NewFlow(auth.Deps{
		API:             client,
		Access:          acc,
		User:            usr,
		Dict:            m.deps.Dict,
		Navigator:       nav,
		Notifier:        queue,
		Resetter:        reg,
		Translator:      m.deps.Translator,
		Hooks:           m.deps.AuthHooks,
		DefaultHomePath: m.cfg.DefaultHomePath,
		LoginPath:       m.cfg.LoginPath,
		DictParams:      m.cfg.DictParams,
		DictLabelField:  m.cfg.DictLabelField,
		DictValueField:  m.cfg.DictValueField,
		ExclusiveLogin:  m.cfg.ExclusiveLogin,
	})
	if err != nil {
		return nil, err
	}
	// el flag de login vuelve a cero con el reset global
	reg.Register(flowResetter{flow})

	return &Workspace{
		ID:        id,
		Access:    acc,
		User:      usr,
		Stores:    reg,
		Navigator: nav,
		Notices:   queue,
		API:       client,
		Flow:      flow,
		Posts:     post.NewService(client, m.deps.Dict),
		CreatedAt: time.Now(),
	}, nil
}

func (m *Manager) reportActive() {
	if m.deps.OnActive != nil {
		m.deps.OnActive(m.table.ItemCount())
	}
}

type flowResetter struct{ f *auth.Flow }

func (r flowResetter) Reset() { r.f.Reset() }
