// Package stores agrupa los stores de un workspace para el reset global y
// persiste sus snapshots en el cache (memory o redis).
package stores

import (
	"sync"

	"github.com/dropDatabas3/adminconsole/internal/access"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

// Resetter algo que vuelve a su estado inicial.
type Resetter interface {
	Reset()
}

// Registry stores de un workspace.
type Registry struct {
	Access *access.Store
	User   *user.Store

	mu    sync.Mutex
	extra []Resetter
}

func NewRegistry(acc *access.Store, usr *user.Store) *Registry {
	return &Registry{Access: acc, User: usr}
}

// Register agrega stores adicionales al reset global.
func (r *Registry) Register(rs ...Resetter) {
	r.mu.Lock()
	r.extra = append(r.extra, rs...)
	r.mu.Unlock()
}

// ResetAll vuelve todos los stores al estado inicial.
func (r *Registry) ResetAll() {
	r.Access.Reset()
	r.User.Reset()
	r.mu.Lock()
	extra := append([]Resetter(nil), r.extra...)
	r.mu.Unlock()
	for _, x := range extra {
		x.Reset()
	}
}
