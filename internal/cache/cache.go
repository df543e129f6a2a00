// Package cache provee abstracciones para caching con soporte multi-backend.
//
// Soporta:
//   - Memory (in-process, go-cache; para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// La consola lo usa para persistir snapshots de los stores (access, user, dict)
// bajo el namespace configurado.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL opcional.
	// Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key.
	Delete(ctx context.Context, key string) error

	// Exists verifica si una key existe.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error
}

// RedisBacked lo implementan los clientes que corren sobre Redis.
type RedisBacked interface {
	Redis() *redis.Client
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver     string // "memory" | "redis"
	Addr       string
	Password   string
	DB         int
	Prefix     string // Prefijo para todas las keys
	DefaultTTL time.Duration
}

// ErrNotFound se devuelve cuando la key no existe o expiró.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente de cache según la configuración.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	default:
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
