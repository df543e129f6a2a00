package router

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidLocation path vacío o no absoluto.
var ErrInvalidLocation = errors.New("router: invalid location")

// Navigator historial de navegación de un workspace. Las navegaciones que
// dispara el servidor (Push/Replace) quedan pendientes hasta que la capa
// HTTP las entregue al navegador con TakePending.
type Navigator struct {
	mu      sync.Mutex
	current Location
	pending *Location
	history []Location
}

const maxHistory = 50

func NewNavigator(start Location) *Navigator {
	if start.Path == "" {
		start.Path = "/"
	}
	return &Navigator{current: start}
}

// Current ruta activa.
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Push navega agregando una entrada al historial.
func (n *Navigator) Push(ctx context.Context, path string) error {
	loc, err := ParseLocation(path)
	if err != nil || path == "" || path[0] != '/' {
		return ErrInvalidLocation
	}
	return n.navigate(ctx, loc, true)
}

// Replace navega reemplazando la entrada actual.
func (n *Navigator) Replace(ctx context.Context, loc Location) error {
	if loc.Path == "" || loc.Path[0] != '/' {
		return ErrInvalidLocation
	}
	return n.navigate(ctx, loc, false)
}

func (n *Navigator) navigate(ctx context.Context, loc Location, push bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if push {
		n.history = append(n.history, n.current)
		if len(n.history) > maxHistory {
			n.history = n.history[len(n.history)-maxHistory:]
		}
	}
	n.current = loc
	p := loc
	n.pending = &p
	return nil
}

// Visit registra la ruta en la que está el navegador (sin generar pendiente).
func (n *Navigator) Visit(loc Location) {
	n.mu.Lock()
	n.current = loc
	n.mu.Unlock()
}

// TakePending devuelve y limpia la última navegación pendiente.
func (n *Navigator) TakePending() (Location, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending == nil {
		return Location{}, false
	}
	loc := *n.pending
	n.pending = nil
	return loc, true
}

// Back vuelve a la entrada anterior del historial (si hay).
func (n *Navigator) Back() (Location, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return Location{}, false
	}
	last := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	n.current = last
	return last, true
}

// Reset vuelve al estado inicial conservando la ruta actual.
func (n *Navigator) Reset() {
	n.mu.Lock()
	n.history = nil
	n.pending = nil
	n.mu.Unlock()
}
