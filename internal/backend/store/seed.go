package store

import (
	"fmt"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/access"
	"github.com/dropDatabas3/adminconsole/internal/backend/password"
	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

// Seed datos iniciales del backend.
type Seed struct {
	Users []User
	Roles []Role
	Menus []user.MenuNode
	Dict  []DictData
	Posts []post.Post
}

// DefaultSeed usuarios admin/admin123 (todos los permisos) y test/test123
// (solo consulta de puestos), con menús, diccionarios y puestos de ejemplo.
func DefaultSeed(p password.Params) (*Seed, error) {
	adminHash, err := password.Hash(p, "admin123")
	if err != nil {
		return nil, fmt.Errorf("seed: hash admin: %w", err)
	}
	testHash, err := password.Hash(p, "test123")
	if err != nil {
		return nil, fmt.Errorf("seed: hash test: %w", err)
	}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	return &Seed{
		Users: []User{
			{ID: 1, Username: "admin", Nickname: "Admin", RealName: "Administrator", Email: "admin@example.com", PasswordHash: adminHash, RoleIDs: []int64{1}},
			{ID: 2, Username: "test", Nickname: "Tester", Email: "test@example.com", PasswordHash: testHash, RoleIDs: []int64{2}},
		},
		Roles: []Role{
			{ID: 1, Name: "Super Admin", Code: "super_admin", Permissions: []string{access.SuperCode}, MenuIDs: []int64{1, 2, 10, 11}},
			{ID: 2, Name: "Common", Code: "common", Permissions: []string{"system:post:query"}, MenuIDs: []int64{1, 2, 10, 11}},
		},
		Menus: []user.MenuNode{
			{ID: 1, Name: "Dashboard", Path: "/dashboard", Icon: "lucide:layout-dashboard", Sort: 1, Visible: true},
			{ID: 2, ParentID: 1, Name: "Analytics", Path: "/analytics", Component: "dashboard/analytics/index", Sort: 1, Visible: true},
			{ID: 10, Name: "System", Path: "/system", Icon: "lucide:settings", Sort: 10, Visible: true},
			{ID: 11, ParentID: 10, Name: "Post", Path: "/system/post", Component: "system/post/index", Sort: 3, Visible: true},
		},
		Dict: []DictData{
			{ID: 1, DictType: post.StatusDictType, Label: "Enabled", Value: "0", ColorType: "primary", Sort: 1},
			{ID: 2, DictType: post.StatusDictType, Label: "Disabled", Value: "1", ColorType: "info", Sort: 2},
			{ID: 3, DictType: "system_user_sex", Label: "Male", Value: "1", Sort: 1},
			{ID: 4, DictType: "system_user_sex", Label: "Female", Value: "2", Sort: 2},
			{ID: 5, DictType: "system_menu_type", Label: "Directory", Value: "1", Sort: 1},
			{ID: 6, DictType: "system_menu_type", Label: "Menu", Value: "2", Sort: 2},
			{ID: 7, DictType: "system_menu_type", Label: "Button", Value: "3", Sort: 3},
		},
		Posts: []post.Post{
			{ID: 1, Name: "CEO", Code: "ceo", Sort: 1, Status: 0, CreateTime: created},
			{ID: 2, Name: "Project Manager", Code: "se", Sort: 2, Status: 0, CreateTime: created},
			{ID: 3, Name: "Human Resources", Code: "hr", Sort: 3, Status: 0, CreateTime: created},
			{ID: 4, Name: "Staff", Code: "user", Sort: 4, Status: 1, Remark: "default post", CreateTime: created},
		},
	}, nil
}
