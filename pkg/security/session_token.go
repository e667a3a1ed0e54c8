package security

import (
	"campusshare/api/internal/apperr"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session token stays valid
const SessionTTL = time.Hour * 24 * 7

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"id"`
}

// TokenIssuer signs and verifies stateless session tokens. Nothing is stored,
// possession of an unexpired token is access.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = SessionTTL
	}

	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is how long tokens issued now will be accepted
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

func (t *TokenIssuer) Issue(userID uint) (string, error) {
	now := t.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: userID,
	})

	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token, %w", err)
	}

	return s, nil
}

// Verify checks signature and expiry and returns the user ID the token was
// issued for. It does not check that the user still exists.
func (t *TokenIssuer) Verify(tokenStr string) (uint, error) {
	if tokenStr == "" {
		return 0, apperr.ErrMalformedToken
	}

	claims := &sessionClaims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return 0, fmt.Errorf("%w, %v", apperr.ErrMalformedToken, err)
		}

		return 0, fmt.Errorf("%w, %v", apperr.ErrInvalidToken, err)
	}

	if claims.UserID == 0 {
		return 0, apperr.ErrInvalidToken
	}

	return claims.UserID, nil
}
