// Package tokens emite los tokens del backend de referencia: access tokens
// JWT EdDSA y refresh tokens opacos.
package tokens

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
)

// KeySet una sola clave activa, en memoria.
type KeySet struct {
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
	KID  string
	Alg  string // "EdDSA"
}

// NewEd25519 genera una clave Ed25519 con el KID dado.
func NewEd25519(kid string) (*KeySet, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeySet{Priv: priv, Pub: pub, KID: kid, Alg: "EdDSA"}, nil
}

type jwk struct {
	Kty string `json:"kty"` // "OKP"
	Crv string `json:"crv"` // "Ed25519"
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	X   string `json:"x"` // base64url(pub)
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// JWKSJSON devuelve el JWKS (solo la pública) en JSON.
func (k *KeySet) JWKSJSON() []byte {
	b, _ := json.Marshal(jwks{Keys: []jwk{{
		Kty: "OKP",
		Crv: "Ed25519",
		Kid: k.KID,
		Alg: k.Alg,
		Use: "sig",
		X:   base64.RawURLEncoding.EncodeToString(k.Pub),
	}}})
	return b
}
