// Package rewardtoken issues and verifies the one-time proof that a rewarded ad
// was watched to completion.
package rewardtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "reelspay-ads"

var ErrInvalidToken = errors.New("invalid reward proof")

// Claims binds a proof to one ad session, one video and one claimant.
type Claims struct {
	VideoID     uint64 `json:"vid"`
	ClaimantKey string `json:"ck"`
	jwt.RegisteredClaims
}

// SessionID is the ad session the proof was issued for.
func (c *Claims) SessionID() string {
	return c.ID
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, mainly for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) Issue(sessionID string, videoID uint64, claimantKey string) (string, error) {
	if sessionID == "" || claimantKey == "" {
		return "", errors.New("session id and claimant are required")
	}
	now := i.now()
	claims := Claims{
		VideoID:     videoID,
		ClaimantKey: claimantKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    issuer,
			Subject:   claimantKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" || claims.ClaimantKey == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
