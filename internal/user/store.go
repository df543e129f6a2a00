// Package user guarda el perfil, roles y árbol de menús accesibles del
// usuario autenticado de un workspace.
package user

import "sync"

// Profile datos del usuario devueltos por get-permission-info.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	RealName string `json:"realName,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Email    string `json:"email,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
}

// DisplayName RealName si existe, sino Nickname.
func (p Profile) DisplayName() string {
	if p.RealName != "" {
		return p.RealName
	}
	return p.Nickname
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// MenuNode nodo del árbol de menús.
type MenuNode struct {
	ID        int64      `json:"id"`
	ParentID  int64      `json:"parentId"`
	Name      string     `json:"name"`
	Path      string     `json:"path,omitempty"`
	Component string     `json:"component,omitempty"`
	Icon      string     `json:"icon,omitempty"`
	Sort      int        `json:"sort"`
	Visible   bool       `json:"visible"`
	Children  []MenuNode `json:"children,omitempty"`
}

type Snapshot struct {
	Profile *Profile   `json:"profile,omitempty"`
	Roles   []Role     `json:"roles,omitempty"`
	Menus   []MenuNode `json:"menus,omitempty"`
}

// Store es seguro para uso concurrente.
type Store struct {
	mu      sync.RWMutex
	profile *Profile
	roles   []Role
	menus   []MenuNode
}

func NewStore() *Store { return &Store{} }

func (s *Store) SetUserInfo(p Profile) {
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
}

// UserInfo devuelve el perfil, o false si no hay sesión.
func (s *Store) UserInfo() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

func (s *Store) SetUserRoles(roles []Role) {
	cp := append([]Role(nil), roles...)
	s.mu.Lock()
	s.roles = cp
	s.mu.Unlock()
}

func (s *Store) Roles() []Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Role(nil), s.roles...)
}

// HasRole por código de rol.
func (s *Store) HasRole(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Code == code {
			return true
		}
	}
	return false
}

func (s *Store) SetAccessMenus(menus []MenuNode) {
	cp := append([]MenuNode(nil), menus...)
	s.mu.Lock()
	s.menus = cp
	s.mu.Unlock()
}

func (s *Store) AccessMenus() []MenuNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]MenuNode(nil), s.menus...)
}

// Reset vuelve al estado inicial.
func (s *Store) Reset() {
	s.mu.Lock()
	s.profile = nil
	s.roles = nil
	s.menus = nil
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Roles: append([]Role(nil), s.roles...),
		Menus: append([]MenuNode(nil), s.menus...),
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	return snap
}

func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	if snap.Profile != nil {
		p := *snap.Profile
		s.profile = &p
	}
	s.roles = append([]Role(nil), snap.Roles...)
	s.menus = append([]MenuNode(nil), snap.Menus...)
}

// FlattenPaths devuelve los paths de todo el árbol en preorden.
func FlattenPaths(menus []MenuNode) []string {
	var out []string
	var walk func([]MenuNode)
	walk = func(nodes []MenuNode) {
		for _, n := range nodes {
			if n.Path != "" {
				out = append(out, n.Path)
			}
			walk(n.Children)
		}
	}
	walk(menus)
	return out
}
