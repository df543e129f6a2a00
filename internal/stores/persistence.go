package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/access"
	"github.com/dropDatabas3/adminconsole/internal/cache"
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

const (
	StoreAccess = "access"
	StoreUser   = "user"
	StoreDict   = "dict"
)

// Persistence guarda snapshots bajo <namespace>:<workspace>:<store> y el
// diccionario (compartido) bajo <namespace>:dict.
type Persistence struct {
	c         cache.Client
	namespace string
	ttl       time.Duration

	// OnError se llama cuando falla un guardado (métricas).
	OnError func(store string, err error)

	// Sealer opcional: cifra los valores antes de escribirlos (tokens en Redis).
	Sealer Sealer
}

// Sealer cifra/descifra valores persistidos (ej. *secretbox.Box).
type Sealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

func NewPersistence(c cache.Client, namespace string, ttl time.Duration) *Persistence {
	if namespace == "" {
		namespace = "console"
	}
	return &Persistence{c: c, namespace: namespace, ttl: ttl}
}

func (p *Persistence) key(workspace, store string) string {
	if workspace == "" {
		return p.namespace + ":" + store
	}
	return p.namespace + ":" + workspace + ":" + store
}

// Snapshot estado persistible de un workspace.
type Snapshot struct {
	Access access.Snapshot
	User   user.Snapshot
}

// Save persiste access y user del workspace.
func (p *Persistence) Save(ctx context.Context, workspace string, reg *Registry) error {
	if err := p.put(ctx, p.key(workspace, StoreAccess), reg.Access.Snapshot(), p.ttl); err != nil {
		p.failed(StoreAccess, err)
		return err
	}
	if err := p.put(ctx, p.key(workspace, StoreUser), reg.User.Snapshot(), p.ttl); err != nil {
		p.failed(StoreUser, err)
		return err
	}
	return nil
}

// Load restaura el workspace. found es false si no había nada persistido.
func (p *Persistence) Load(ctx context.Context, workspace string, reg *Registry) (found bool, err error) {
	var acc access.Snapshot
	ok, err := p.get(ctx, p.key(workspace, StoreAccess), &acc)
	if err != nil || !ok {
		return false, err
	}
	var usr user.Snapshot
	if _, err := p.get(ctx, p.key(workspace, StoreUser), &usr); err != nil {
		return false, err
	}
	reg.Access.Restore(acc)
	reg.User.Restore(usr)
	return true, nil
}

// Delete borra lo persistido del workspace.
func (p *Persistence) Delete(ctx context.Context, workspace string) error {
	if err := p.c.Delete(ctx, p.key(workspace, StoreAccess)); err != nil {
		return err
	}
	return p.c.Delete(ctx, p.key(workspace, StoreUser))
}

// SaveDict implementa dict.Persister. El diccionario no expira.
func (p *Persistence) SaveDict(ctx context.Context, d dict.Dict) error {
	if err := p.put(ctx, p.key("", StoreDict), d, 0); err != nil {
		p.failed(StoreDict, err)
		return err
	}
	return nil
}

// LoadDict implementa dict.Persister. nil si no había nada.
func (p *Persistence) LoadDict(ctx context.Context) (dict.Dict, error) {
	var d dict.Dict
	ok, err := p.get(ctx, p.key("", StoreDict), &d)
	if err != nil || !ok {
		return nil, err
	}
	return d, nil
}

func (p *Persistence) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("stores: encode %s: %w", key, err)
	}
	val := string(b)
	if p.Sealer != nil {
		if val, err = p.Sealer.Seal(val); err != nil {
			return fmt.Errorf("stores: seal %s: %w", key, err)
		}
	}
	if err := p.c.Set(ctx, key, val, ttl); err != nil {
		return fmt.Errorf("stores: save %s: %w", key, err)
	}
	return nil
}

func (p *Persistence) get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := p.c.Get(ctx, key)
	if cache.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stores: load %s: %w", key, err)
	}
	if p.Sealer != nil {
		if raw, err = p.Sealer.Open(raw); err != nil {
			return false, fmt.Errorf("stores: open %s: %w", key, err)
		}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("stores: decode %s: %w", key, err)
	}
	return true, nil
}

func (p *Persistence) failed(store string, err error) {
	if p.OnError != nil {
		p.OnError(store, err)
	}
}
