// Package secretbox cifra valores con AES-256-GCM. La consola lo usa para que
// los snapshots de sesión (tokens) no queden en claro en Redis.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSizeGCM      = 12  // AES-GCM nonce size recomendado (96 bits)
	requiredKeyLength = 32  // 32 bytes => AES-256
	sep               = "|" // nonce|ciphertext (ambos en base64)
)

var ErrFormat = errors.New("secretbox: formato inválido, esperado base64(nonce)|base64(ciphertext)")

// Box cifra/descifra con una clave fija. Seguro para uso concurrente.
type Box struct {
	aead cipher.AEAD
}

// New crea un Box a partir de la clave cruda de 32 bytes.
func New(key []byte) (*Box, error) {
	if len(key) != requiredKeyLength {
		return nil, fmt.Errorf("secretbox: clave inválida: %d bytes (requiere %d)", len(key), requiredKeyLength)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// ParseKey acepta la clave en base64 (std o raw), hex (64 chars) o cruda.
// Genere una con: openssl rand -base64 32
func ParseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(key) == 64 {
		if h, err := hex.DecodeString(key); err == nil {
			return h, nil
		}
	}
	if len(key) == requiredKeyLength {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("secretbox: clave inválida: %d bytes (requiere %d)", len(key), requiredKeyLength)
}

// Seal cifra plainText y devuelve base64(nonce)|base64(ciphertext).
func (b *Box) Seal(plainText string) (string, error) {
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	ct := b.aead.Seal(nil, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Open descifra un valor producido por Seal.
func (b *Box) Open(cipherText string) (string, error) {
	parts := strings.Split(cipherText, sep)
	if len(parts) != 2 {
		return "", ErrFormat
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(nonce) != nonceSizeGCM {
		return "", fmt.Errorf("nonce inválido: esperado %d bytes, obtuvo %d", nonceSizeGCM, len(nonce))
	}
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}
