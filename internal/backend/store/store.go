// Package store persiste los datos del backend de referencia: usuarios,
// roles, menús, diccionarios, puestos y refresh tokens. Hay una
// implementación en memoria (sembrada) y otra sobre PostgreSQL (pgx).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
)

// User cuenta del backend.
type User struct {
	ID           int64
	Username     string
	Nickname     string
	RealName     string
	Email        string
	PasswordHash string
	Status       int // 0 habilitado
	HomePath     string
	RoleIDs      []int64
}

// Profile proyección pública del usuario.
func (u User) Profile() user.Profile {
	return user.Profile{
		ID:       u.ID,
		Username: u.Username,
		Nickname: u.Nickname,
		RealName: u.RealName,
		Email:    u.Email,
	}
}

// Role rol con sus códigos de permiso.
type Role struct {
	ID          int64
	Name        string
	Code        string
	Permissions []string
	MenuIDs     []int64
}

// DictData fila de dato de diccionario.
type DictData struct {
	ID        int64  `json:"id"`
	DictType  string `json:"dictType"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	ColorType string `json:"colorType,omitempty"`
	CSSClass  string `json:"cssClass,omitempty"`
	Sort      int    `json:"sort"`
}

// Grants lo que get-permission-info devuelve para un usuario.
type Grants struct {
	Roles       []user.Role
	Menus       []user.MenuNode
	Permissions []string
}

// Store contrato de persistencia del backend.
type Store interface {
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)
	Grants(ctx context.Context, userID int64) (*Grants, error)
	DictData(ctx context.Context) ([]DictData, error)

	ListPosts(ctx context.Context, p post.PageParam) (*post.Page, error)
	GetPost(ctx context.Context, id int64) (*post.Post, error)
	CreatePost(ctx context.Context, p post.Post) (int64, error)
	UpdatePost(ctx context.Context, p post.Post) error
	DeletePost(ctx context.Context, id int64) error

	SaveRefreshToken(ctx context.Context, hash string, userID int64, expiresAt time.Time) error
	// ConsumeRefreshToken valida y revoca el token (rotación). ErrNotFound si
	// no existe, está revocado o vencido.
	ConsumeRefreshToken(ctx context.Context, hash string, now time.Time) (int64, error)
	RevokeUserTokens(ctx context.Context, userID int64) error

	Ping(ctx context.Context) error
	Close()
}

// permissionsOf une los códigos de los roles, sin duplicados y en orden.
func permissionsOf(roles []Role) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range roles {
		for _, p := range r.Permissions {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// BuildMenuTree arma el árbol desde la lista plana ordenando por Sort.
func BuildMenuTree(flat []user.MenuNode) []user.MenuNode {
	byParent := map[int64][]user.MenuNode{}
	ids := map[int64]bool{}
	for _, m := range flat {
		ids[m.ID] = true
	}
	for _, m := range flat {
		parent := m.ParentID
		if !ids[parent] {
			parent = 0
		}
		byParent[parent] = append(byParent[parent], m)
	}
	var build func(parent int64) []user.MenuNode
	build = func(parent int64) []user.MenuNode {
		nodes := byParent[parent]
		sortMenus(nodes)
		out := make([]user.MenuNode, 0, len(nodes))
		for _, n := range nodes {
			n.Children = build(n.ID)
			if len(n.Children) == 0 {
				n.Children = nil
			}
			out = append(out, n)
		}
		return out
	}
	return build(0)
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*PG)(nil)
)
