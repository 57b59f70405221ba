package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs session claims into compact JWTs.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and returns its claims if it is legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAKeyPair holds an Ed25519 keypair for session tokens. Keys are
// ephemeral per process; a restart invalidates outstanding sessions, which
// for one-hour admin sessions is an acceptable trade against key storage.
type EdDSAKeyPair struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEdDSAKeyPair generates a fresh Ed25519 keypair.
func NewEdDSAKeyPair() (*EdDSAKeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate ed25519 key: %w", err)
	}
	return &EdDSAKeyPair{priv: priv, pub: pub}, nil
}

// IsReady reports whether key material is loaded.
func (k *EdDSAKeyPair) IsReady() bool {
	return k != nil && len(k.priv) == ed25519.PrivateKeySize && len(k.pub) == ed25519.PublicKeySize
}

// Sign turns claims into a signed JWT string.
func (k *EdDSAKeyPair) Sign(claims Claims) (string, error) {
	if !k.IsReady() {
		return "", errors.New("jwtx: nil Ed25519 key")
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(k.priv)
}

// EdDSAVerifier validates JWTs signed with the paired key.
type EdDSAVerifier struct {
	keys   *EdDSAKeyPair
	issuer string
}

// NewEdDSAVerifier creates a verifier bound to a keypair and expected issuer.
func NewEdDSAVerifier(keys *EdDSAKeyPair, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{keys: keys, issuer: issuer}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if !v.keys.IsReady() {
			return nil, errors.New("jwtx: no verification key loaded")
		}
		return v.keys.pub, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
