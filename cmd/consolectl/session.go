package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/console"
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/locales"
	"github.com/dropDatabas3/adminconsole/internal/router"
)

type options struct {
	BaseURL  string
	TenantID string
	Username string
	Password string
	Locale   string
	Out      string // "json" | "text"
	Timeout  time.Duration
}

// session es un workspace efímero: vive lo que dura el comando.
type session struct {
	out  io.Writer
	opts *options
	mgr  *console.Manager
	dict *dict.Cache
	ws   *console.Workspace
	res  *auth.LoginResult
}

func openSession(ctx context.Context, out io.Writer, o *options) (*session, error) {
	if o.Username == "" || o.Password == "" {
		return nil, errors.New("faltan credenciales (--username/--password o env CONSOLECTL_USERNAME/CONSOLECTL_PASSWORD)")
	}
	bundle, err := locales.Load(o.Locale)
	if err != nil {
		return nil, err
	}
	dc := dict.New(dict.Options{})
	mgr, err := console.NewManager(console.Config{
		TTL: time.Hour,
		Backend: api.Config{
			BaseURL:            o.BaseURL,
			Timeout:            o.Timeout,
			TenantID:           o.TenantID,
			EnableRefreshToken: true,
		},
		DefaultHomePath: "/analytics",
		LoginPath:       router.LoginPath,
	}, console.Deps{
		Dict:       dc,
		Translator: bundle.For(o.Locale),
	})
	if err != nil {
		return nil, err
	}
	ws, err := mgr.Create(ctx)
	if err != nil {
		mgr.Close()
		return nil, err
	}
	res, err := ws.Flow.Login(ctx, auth.Credentials{Username: o.Username, Password: o.Password, TenantName: o.TenantID}, nil)
	if err != nil {
		mgr.Close()
		return nil, fmt.Errorf("login: %w", err)
	}
	return &session{out: out, opts: o, mgr: mgr, dict: dc, ws: ws, res: res}, nil
}

// waitDict espera la carga del diccionario disparada por el login.
func (s *session) waitDict(ctx context.Context) error {
	if s.res == nil || s.res.DictRefresh == nil {
		return nil
	}
	return s.res.DictRefresh.Wait(ctx)
}

// close cierra la sesión remota (sin redirect) y descarta el workspace.
func (s *session) close(ctx context.Context) {
	_ = s.ws.Flow.Logout(ctx, false)
	s.mgr.Close()
}

func (s *session) notices() {
	for _, n := range s.ws.Notices.Drain() {
		if s.opts.Out == "text" {
			fmt.Fprintf(s.out, "[%s] %s: %s\n", n.Kind, n.Content, n.Description)
		}
	}
}

func (s *session) print(v any) error {
	if s.opts.Out == "json" {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return nil
}
