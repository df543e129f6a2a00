package tokens

import (
	"encoding/json"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	ks, err := NewEd25519("k1")
	require.NoError(t, err)
	return NewIssuer("http://mock", ks, time.Minute)
}

func TestIssuer_IssueAndParse(t *testing.T) {
	iss := newIssuer(t)
	tok, exp, err := iss.IssueAccess(42, "1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	id, err := iss.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	// el exp se puede leer sin verificar (lo hace la consola)
	claims := jwtv5.MapClaims{}
	_, _, err = jwtv5.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	require.Equal(t, "1", claims["tenant_id"])
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := newIssuer(t)
	tok, _, err := iss.IssueAccess(1, "")
	require.NoError(t, err)

	iss.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = iss.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherKey(t *testing.T) {
	a := newIssuer(t)
	b := newIssuer(t)
	tok, _, err := a.IssueAccess(1, "")
	require.NoError(t, err)
	_, err = b.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherIssuer(t *testing.T) {
	a := newIssuer(t)
	tok, _, err := a.IssueAccess(1, "")
	require.NoError(t, err)

	b := NewIssuer("http://other", a.Keys, time.Minute)
	_, err = b.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidIssuer)
}

func TestOpaque(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Len(t, a, 43)
	require.Equal(t, SHA256Base64URL(a), SHA256Base64URL(a))
	require.NotEqual(t, SHA256Base64URL(a), SHA256Base64URL(b))
}

func TestJWKS(t *testing.T) {
	iss := newIssuer(t)
	var out struct {
		Keys []map[string]string `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(iss.Keys.JWKSJSON(), &out))
	require.Len(t, out.Keys, 1)
	require.Equal(t, "k1", out.Keys[0]["kid"])
	require.Equal(t, "Ed25519", out.Keys[0]["crv"])
}
