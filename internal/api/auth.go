package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/dict"
)

const (
	PathLogin          = "/admin-api/system/auth/login"
	PathLogout         = "/admin-api/system/auth/logout"
	PathRefreshToken   = "/admin-api/system/auth/refresh-token"
	PathPermissionInfo = "/admin-api/system/auth/get-permission-info"
	PathDictSimpleList = "/admin-api/system/dict-data/simple-list"
)

// Login autentica con usuario/contraseña.
func (c *Client) Login(ctx context.Context, cred auth.Credentials) (*auth.TokenPair, error) {
	var out auth.TokenPair
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathLogin, Body: cred, Anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalida la sesión en el backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: PathLogout, NoRefresh: true}, nil)
}

// RefreshToken canjea un refresh token por un par nuevo.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	var out auth.TokenPair
	q := url.Values{"refreshToken": {refreshToken}}
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathRefreshToken, Query: q, Anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PermissionInfo usuario, roles, menús y códigos de la sesión actual.
func (c *Client) PermissionInfo(ctx context.Context) (*auth.PermissionInfo, error) {
	var out auth.PermissionInfo
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathPermissionInfo}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DictSimpleList lista plana de datos de diccionario. Tiene la forma de dict.FetchFunc.
func (c *Client) DictSimpleList(ctx context.Context, params map[string]any) ([]dict.Record, error) {
	var out []dict.Record
	q := url.Values{}
	for k, v := range params {
		q.Set(k, toQueryValue(v))
	}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathDictSimpleList, Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
