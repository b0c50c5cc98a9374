// Package auth mints and validates session tokens tied to a connected
// wallet. The token proves the holder completed a connector handshake in
// this session; it carries no chain authority.
package auth

import (
	"time"

	"gatechat/domain"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the data stored inside a wallet session JWT.
type SessionClaims struct {
	Address  string `json:"address"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	key      []byte
	duration time.Duration
}

// NewTokenIssuer signs with key using HS256. The key comes from
// configuration, never from source.
func NewTokenIssuer(key []byte, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{key: key, duration: duration}
}

// Issue creates a signed session token for a connected wallet.
func (i *TokenIssuer) Issue(identity domain.WalletIdentity) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Address:  string(identity.Address),
		Provider: identity.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gatechat",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.key)
}

// Validate parses the token and checks its signature and expiration.
func (i *TokenIssuer) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
