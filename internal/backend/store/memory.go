package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

type refreshEntry struct {
	userID    int64
	expiresAt time.Time
	revoked   bool
}

// Memory store en memoria protegido por un RWMutex.
type Memory struct {
	mu      sync.RWMutex
	users   map[int64]User
	roles   map[int64]Role
	menus   []user.MenuNode
	dict    []DictData
	posts   map[int64]post.Post
	nextID  int64
	refresh map[string]refreshEntry
}

// NewMemory crea el store con los datos de seed (nil = vacío).
func NewMemory(seed *Seed) *Memory {
	m := &Memory{
		users:   map[int64]User{},
		roles:   map[int64]Role{},
		posts:   map[int64]post.Post{},
		refresh: map[string]refreshEntry{},
	}
	if seed == nil {
		return m
	}
	for _, u := range seed.Users {
		m.users[u.ID] = u
	}
	for _, r := range seed.Roles {
		m.roles[r.ID] = r
	}
	m.menus = append(m.menus, seed.Menus...)
	m.dict = append(m.dict, seed.Dict...)
	for _, p := range seed.Posts {
		m.posts[p.ID] = p
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UserByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) Grants(_ context.Context, userID int64) (*Grants, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	var roles []Role
	menuIDs := map[int64]bool{}
	for _, id := range u.RoleIDs {
		r, ok := m.roles[id]
		if !ok {
			continue
		}
		roles = append(roles, r)
		for _, mid := range r.MenuIDs {
			menuIDs[mid] = true
		}
	}
	g := &Grants{Permissions: permissionsOf(roles), Roles: []user.Role{}}
	for _, r := range roles {
		g.Roles = append(g.Roles, user.Role{ID: r.ID, Name: r.Name, Code: r.Code})
	}
	var flat []user.MenuNode
	for _, mn := range m.menus {
		if menuIDs[mn.ID] {
			flat = append(flat, mn)
		}
	}
	g.Menus = BuildMenuTree(flat)
	return g, nil
}

func (m *Memory) DictData(_ context.Context) ([]DictData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]DictData(nil), m.dict...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DictType != out[j].DictType {
			return out[i].DictType < out[j].DictType
		}
		return out[i].Sort < out[j].Sort
	})
	return out, nil
}

func (m *Memory) ListPosts(_ context.Context, q post.PageParam) (*post.Page, error) {
	q = q.Normalize()
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []post.Post
	for _, p := range m.posts {
		if matchPost(p, q) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Sort != all[j].Sort {
			return all[i].Sort < all[j].Sort
		}
		return all[i].ID < all[j].ID
	})
	page := &post.Page{List: []post.Post{}, Total: int64(len(all))}
	if off := offset(q); off < len(all) {
		end := off + q.PageSize
		if end > len(all) {
			end = len(all)
		}
		page.List = all[off:end]
	}
	return page, nil
}

func (m *Memory) GetPost(_ context.Context, id int64) (*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) CreatePost(_ context.Context, p post.Post) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codeTaken(p.Code, 0) {
		return 0, ErrConflict
	}
	m.nextID++
	p.ID = m.nextID
	if p.CreateTime == 0 {
		p.CreateTime = time.Now().UnixMilli()
	}
	m.posts[p.ID] = p
	return p.ID, nil
}

func (m *Memory) UpdatePost(_ context.Context, p post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.posts[p.ID]
	if !ok {
		return ErrNotFound
	}
	if m.codeTaken(p.Code, p.ID) {
		return ErrConflict
	}
	p.CreateTime = cur.CreateTime
	m.posts[p.ID] = p
	return nil
}

func (m *Memory) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// codeTaken con el lock tomado.
func (m *Memory) codeTaken(code string, except int64) bool {
	for id, p := range m.posts {
		if id != except && strings.EqualFold(p.Code, code) {
			return true
		}
	}
	return false
}

func (m *Memory) SaveRefreshToken(_ context.Context, hash string, userID int64, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[hash] = refreshEntry{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *Memory) ConsumeRefreshToken(_ context.Context, hash string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.refresh[hash]
	if !ok || e.revoked || !now.Before(e.expiresAt) {
		return 0, ErrNotFound
	}
	e.revoked = true
	m.refresh[hash] = e
	return e.userID, nil
}

func (m *Memory) RevokeUserTokens(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, e := range m.refresh {
		if e.userID == userID {
			e.revoked = true
			m.refresh[h] = e
		}
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}
