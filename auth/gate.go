package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campushub/domain"
	"campushub/errors"
)

// customClaims is the JWT shape the host application signs for its users.
type customClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	OrgID  string `json:"org_id"`
	jwt.RegisteredClaims
}

// Gate verifies the bearer credential presented at connection time and
// derives the identity claim. It runs exactly once per connection attempt,
// before any handler; on failure the connection is rejected outright.
type Gate struct {
	secret []byte
}

func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Verify parses and validates the signature and expiration of a JWT string
// and returns the claim a connection will carry for its lifetime.
func (g *Gate) Verify(tokenString string) (domain.Claim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &customClaims{}, func(token *jwt.Token) (interface{}, error) {
		return g.secret, nil
	})
	if err != nil {
		return domain.Claim{}, fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*customClaims)
	if !ok || !token.Valid {
		return domain.Claim{}, errors.ErrAuthentication
	}
	if claims.UserID == "" || claims.OrgID == "" {
		return domain.Claim{}, errors.ErrAuthentication
	}

	return domain.Claim{
		UserID: claims.UserID,
		Role:   domain.Role(claims.Role),
		OrgID:  claims.OrgID,
	}, nil
}

// Mint creates a signed token for a claim. Token issuance belongs to the
// host application; this helper exists for the CLIs and the test harness.
func (g *Gate) Mint(claim domain.Claim, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &customClaims{
		UserID: claim.UserID,
		Role:   string(claim.Role),
		OrgID:  claim.OrgID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "campushub",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}
