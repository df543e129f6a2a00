// Package util helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskIdentifier oculta un usuario o email para logs: conserva la primera
// letra del usuario y del primer label del dominio.
//
//	admin           -> a…n
//	ada@example.com -> a…@e….com
func MaskIdentifier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if len([]rune(s)) <= 3 {
			return "***"
		}
		r := []rune(s)
		return string(r[0]) + "…" + string(r[len(r)-1])
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	dparts := strings.Split(dom, ".")
	if len(dparts) > 0 && len(dparts[0]) > 1 {
		dparts[0] = dparts[0][:1] + "…"
	}
	return user + "@" + strings.Join(dparts, ".")
}
