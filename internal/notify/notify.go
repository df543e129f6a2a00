// Package notify modela las notificaciones toast que la consola entrega al navegador.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

type Notification struct {
	Kind        Kind          `json:"kind"`
	Content     string        `json:"content"`
	Description string        `json:"description,omitempty"`
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"duration"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Sink recibe notificaciones de éxito.
type Sink interface {
	Success(n Notification)
}

// Queue es la cola FIFO de notificaciones pendientes de un workspace.
// Acotada: al superar max se descartan las más viejas.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	max   int
	now   func() time.Time
}

const defaultMax = 32

func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = defaultMax
	}
	return &Queue{max: limit, now: time.Now}
}

func (q *Queue) Success(n Notification) {
	n.Kind = KindSuccess
	q.Push(n)
}

func (q *Queue) Push(n Notification) {
	if n.Kind == "" {
		n.Kind = KindInfo
	}
	n.DurationMs = n.Duration.Milliseconds()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = q.now()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if over := len(q.items) - q.max; over > 0 {
		q.items = append([]Notification(nil), q.items[over:]...)
	}
}

// Drain devuelve y vacía las pendientes, en orden de llegada.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Reset descarta todo lo pendiente.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// SinkFunc adapta una función a Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Success(n Notification) { f(n) }
