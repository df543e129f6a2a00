package auth

import (
	"github.com/dropDatabas3/adminconsole/internal/user"
)

// Credentials formulario de login.
type Credentials struct {
	Username            string `json:"username"`
	Password            string `json:"password"`
	CaptchaVerification string `json:"captchaVerification,omitempty"`
	TenantName          string `json:"tenantName,omitempty"`
	RememberMe          bool   `json:"rememberMe,omitempty"`
}

// TokenPair respuesta del login remoto (y del refresh).
type TokenPair struct {
	UserID       int64  `json:"userId,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresTime epoch millis del vencimiento del access token.
	ExpiresTime int64 `json:"expiresTime,omitempty"`
}

// PermissionInfo lo que devuelve get-permission-info. Reemplaza por completo
// el valor previo en los stores.
type PermissionInfo struct {
	User        user.Profile    `json:"user"`
	Roles       []user.Role     `json:"roles"`
	Menus       []user.MenuNode `json:"menus"`
	Permissions []string        `json:"permissions"`
	HomePath    string          `json:"homePath,omitempty"`
}
