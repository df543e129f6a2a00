package access

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestStore_TokensAndReset(t *testing.T) {
	s := NewStore()
	require.False(t, s.Authenticated())

	s.SetTokens("a", "r")
	s.SetLoginExpired(true)
	s.SetAccessCodes([]string{"system:post:query"})
	require.True(t, s.Authenticated())
	require.Equal(t, "r", s.RefreshToken())

	s.Reset()
	require.Empty(t, s.AccessToken())
	require.Empty(t, s.RefreshToken())
	require.False(t, s.LoginExpired())
	require.Empty(t, s.AccessCodes())
}

func TestStore_AccessCodes(t *testing.T) {
	s := NewStore()
	s.SetAccessCodes([]string{"system:post:query", "system:post:create"})

	require.True(t, s.HasAccessCode("system:post:query"))
	require.False(t, s.HasAccessCode("system:post:delete"))
	require.True(t, s.HasAnyAccessCode("system:post:delete", "system:post:create"))
	require.True(t, s.HasAnyAccessCode())

	s.SetAccessCodes([]string{SuperCode})
	require.True(t, s.HasAccessCode("system:user:delete"))
}

func TestStore_AccessTokenExpiresAt(t *testing.T) {
	s := NewStore()
	_, ok := s.AccessTokenExpiresAt()
	require.False(t, ok)

	s.SetAccessToken("opaque-token")
	_, ok = s.AccessTokenExpiresAt()
	require.False(t, ok)

	exp := time.Now().Add(-time.Minute).Truncate(time.Second)
	s.SetAccessToken(signedToken(t, exp))
	got, ok := s.AccessTokenExpiresAt()
	require.True(t, ok)
	require.True(t, got.Equal(exp))
	require.True(t, s.AccessTokenExpired(time.Now()))

	s.SetAccessToken(signedToken(t, time.Now().Add(time.Hour)))
	require.False(t, s.AccessTokenExpired(time.Now()))
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	s.SetTokens("a", "r")
	s.SetAccessCodes([]string{"x"})

	other := NewStore()
	other.Restore(s.Snapshot())
	require.Equal(t, "a", other.AccessToken())
	require.True(t, other.HasAccessCode("x"))
}
