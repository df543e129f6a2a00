package tokens

import (
	"errors"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("tokens: invalid token")
	ErrInvalidIssuer = errors.New("tokens: invalid issuer")
)

// Issuer firma access tokens con la clave activa.
type Issuer struct {
	Iss       string
	Keys      *KeySet
	AccessTTL time.Duration

	now func() time.Time
}

func NewIssuer(iss string, ks *KeySet, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	return &Issuer{Iss: iss, Keys: ks, AccessTTL: accessTTL, now: time.Now}
}

// IssueAccess emite un access token para el usuario. tenant viaja como claim.
func (i *Issuer) IssueAccess(userID int64, tenant string) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	if tenant != "" {
		claims["tenant_id"] = tenant
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.Keys.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Keys.Priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma EdDSA, iss y exp/nbf (30s de tolerancia). Devuelve el
// id de usuario.
func (i *Issuer) Parse(token string) (int64, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != "" && kid != i.Keys.KID {
			return nil, ErrInvalidToken
		}
		return i.Keys.Pub, nil
	}
	claims := jwtv5.MapClaims{}
	tok, err := jwtv5.ParseWithClaims(token, claims, keyfunc,
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	if iss, _ := claims.GetIssuer(); i.Iss != "" && iss != i.Iss {
		return 0, ErrInvalidIssuer
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}
