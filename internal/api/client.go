// Package api es el cliente HTTP del backend de administración.
//
// Todas las respuestas vienen en el envelope {code, msg, data}; code 0 es OK.
// Ante un 401 (HTTP o de envelope) se intenta un único refresh del token si
// está habilitado; si no, la sesión queda marcada como expirada.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

const (
	codeOK           = 0
	codeUnauthorized = 401

	tenantHeader = "tenant-id"
)

// TokenSource de dónde salen (y a dónde vuelven) los tokens. Lo implementa
// el Access Store del workspace.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(accessToken, refreshToken string)
	SetLoginExpired(bool)
}

// Config del cliente.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	TenantID           string
	EnableRefreshToken bool
	HTTP               *http.Client
	Logger             *zap.Logger
}

// Client es seguro para uso concurrente. Uno por workspace (comparte el
// *http.Client subyacente).
type Client struct {
	base    string
	http    *http.Client
	tokens  TokenSource
	tenant  string
	refresh bool
	log     *zap.Logger

	sf singleflight.Group
}

func New(cfg Config, tokens TokenSource) *Client {
	hc := cfg.HTTP
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	l := cfg.Logger
	if l == nil {
		l = logger.L()
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		tokens:  tokens,
		tenant:  cfg.TenantID,
		refresh: cfg.EnableRefreshToken,
		log:     l.With(logger.Component("api")),
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Request describe una llamada al backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Anonymous no adjunta el bearer ni maneja 401 (login, refresh).
	Anonymous bool
	// NoRefresh no intenta refrescar ante 401 (logout).
	NoRefresh bool
}

// Do ejecuta req y decodifica data en out (si out != nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	env, status, err := c.send(ctx, req)
	if err != nil {
		return err
	}

	if !req.Anonymous && isUnauthorized(status, env) {
		if !c.tryRefresh(ctx, req) {
			return c.expire(req.Path)
		}
		env, status, err = c.send(ctx, req)
		if err != nil {
			return err
		}
		if isUnauthorized(status, env) {
			return c.expire(req.Path)
		}
	}

	if status >= 400 || env.Code != codeOK {
		return &APIError{Status: status, Code: env.Code, Msg: env.Msg, Path: req.Path}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	// UseNumber: los ids/values numéricos de mapas genéricos no pasan por float64
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("api: decode %s: %w", req.Path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req Request) (envelope, int, error) {
	var env envelope

	u := c.base + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return env, 0, fmt.Errorf("api: encode %s: %w", req.Path, err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	hr, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return env, 0, err
	}
	hr.Header.Set("Accept", "application/json")
	if req.Body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if c.tenant != "" {
		hr.Header.Set(tenantHeader, c.tenant)
	}
	if !req.Anonymous {
		if tok := c.tokens.AccessToken(); tok != "" {
			hr.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(hr)
	if err != nil {
		return env, 0, fmt.Errorf("api: %s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return env, resp.StatusCode, fmt.Errorf("api: read %s: %w", req.Path, err)
	}
	c.log.Debug("backend call",
		logger.Upstream(method+" "+req.Path),
		logger.Status(resp.StatusCode),
		logger.Elapsed(time.Since(start)),
	)

	if len(bytes.TrimSpace(raw)) == 0 {
		if resp.StatusCode >= 400 {
			env.Code = resp.StatusCode
		}
		return env, resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return envelope{Code: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}, resp.StatusCode, nil
		}
		return env, resp.StatusCode, fmt.Errorf("api: decode envelope %s: %w", req.Path, err)
	}
	return env, resp.StatusCode, nil
}

func isUnauthorized(status int, env envelope) bool {
	return status == http.StatusUnauthorized || env.Code == codeUnauthorized
}

// tryRefresh refresca una sola vez por grupo de llamadas concurrentes.
func (c *Client) tryRefresh(ctx context.Context, req Request) bool {
	if !c.refresh || req.NoRefresh || c.tokens.RefreshToken() == "" {
		return false
	}
	stale := c.tokens.AccessToken()
	_, err, _ := c.sf.Do("refresh", func() (any, error) {
		// otro request ya refrescó mientras esperábamos
		if cur := c.tokens.AccessToken(); cur != "" && cur != stale {
			return nil, nil
		}
		pair, err := c.RefreshToken(ctx, c.tokens.RefreshToken())
		if err != nil {
			return nil, err
		}
		if pair.AccessToken == "" {
			return nil, ErrUnauthorized
		}
		c.tokens.SetTokens(pair.AccessToken, pair.RefreshToken)
		return nil, nil
	})
	if err != nil {
		c.log.Info("token refresh failed", logger.Err(err))
		return false
	}
	return true
}

func (c *Client) expire(path string) error {
	c.tokens.SetLoginExpired(true)
	c.log.Info("session expired", logger.Upstream(path))
	return ErrUnauthorized
}
