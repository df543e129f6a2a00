// Package access guarda las credenciales de sesión de un workspace: tokens,
// flag de sesión expirada y códigos de permiso.
package access

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SuperCode otorga todos los permisos.
const SuperCode = "*:*:*"

// Snapshot es la forma persistible del store.
type Snapshot struct {
	AccessToken  string   `json:"accessToken,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	LoginExpired bool     `json:"loginExpired,omitempty"`
	AccessCodes  []string `json:"accessCodes,omitempty"`
}

// Store es seguro para uso concurrente. Solo se muta por sus setters.
type Store struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	loginExpired bool
	codes        []string
	codeSet      map[string]struct{}
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{codeSet: map[string]struct{}{}}
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Store) SetAccessToken(v string) {
	s.mu.Lock()
	s.accessToken = v
	s.mu.Unlock()
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Store) SetRefreshToken(v string) {
	s.mu.Lock()
	s.refreshToken = v
	s.mu.Unlock()
}

// SetTokens guarda ambos tokens en una sola operación.
func (s *Store) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.mu.Unlock()
}

func (s *Store) LoginExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginExpired
}

func (s *Store) SetLoginExpired(v bool) {
	s.mu.Lock()
	s.loginExpired = v
	s.mu.Unlock()
}

// AccessCodes devuelve una copia de los códigos de permiso.
func (s *Store) AccessCodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

func (s *Store) SetAccessCodes(codes []string) {
	cp := make([]string, len(codes))
	copy(cp, codes)
	set := make(map[string]struct{}, len(cp))
	for _, c := range cp {
		set[c] = struct{}{}
	}
	s.mu.Lock()
	s.codes = cp
	s.codeSet = set
	s.mu.Unlock()
}

// HasAccessCode reporta si el código está concedido (o el super permiso).
func (s *Store) HasAccessCode(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.codeSet[SuperCode]; ok {
		return true
	}
	_, ok := s.codeSet[code]
	return ok
}

// HasAnyAccessCode true si alguno de los códigos está concedido.
// Sin códigos pedidos no hay restricción.
func (s *Store) HasAnyAccessCode(codes ...string) bool {
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if s.HasAccessCode(c) {
			return true
		}
	}
	return false
}

// Authenticated true si hay access token.
func (s *Store) Authenticated() bool {
	return s.AccessToken() != ""
}

// AccessTokenExpiresAt lee el claim exp del access token sin verificar la
// firma (la verificación es del backend). false si no hay token, no es un
// JWT o no trae exp.
func (s *Store) AccessTokenExpiresAt() (time.Time, bool) {
	raw := s.AccessToken()
	if raw == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// AccessTokenExpired true si el token trae exp y ya pasó.
func (s *Store) AccessTokenExpired(now time.Time) bool {
	exp, ok := s.AccessTokenExpiresAt()
	return ok && !now.Before(exp)
}

// Reset vuelve al estado inicial.
func (s *Store) Reset() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.loginExpired = false
	s.codes = nil
	s.codeSet = map[string]struct{}{}
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, len(s.codes))
	copy(codes, s.codes)
	return Snapshot{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		LoginExpired: s.loginExpired,
		AccessCodes:  codes,
	}
}

func (s *Store) Restore(snap Snapshot) {
	s.SetAccessCodes(snap.AccessCodes)
	s.mu.Lock()
	s.accessToken = snap.AccessToken
	s.refreshToken = snap.RefreshToken
	s.loginExpired = snap.LoginExpired
	s.mu.Unlock()
}
