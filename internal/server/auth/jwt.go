// Package auth issues and verifies the tenant-scoped tokens a POS terminal
// presents: a bearer API token and a CSRF token bound to the same tenant.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gophpos/internal/common"
)

const (
	audienceAPI  = "api"
	audienceCSRF = "csrf"
)

// Claims are the registered claims plus the tenant the token acts for.
type Claims struct {
	jwt.RegisteredClaims
	TenantID int64 `json:"tenant_id"`
}

func generate(tenantID int64, audience string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		TenantID: tenantID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func parse(tokenString, audience string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
		return 0, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.TenantID <= 0 {
		return 0, common.ErrInvalidToken
	}

	return claims.TenantID, nil
}

// GenerateToken issues the bearer API token for tenantID.
func GenerateToken(tenantID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generate(tenantID, audienceAPI, secretKey, validityDuration)
}

// GetTenantIDFromToken verifies a bearer API token.
func GetTenantIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	return parse(tokenString, audienceAPI, secretKey)
}

// GenerateCSRFToken issues the CSRF token sent on state-changing requests.
func GenerateCSRFToken(tenantID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generate(tenantID, audienceCSRF, secretKey, validityDuration)
}

// VerifyCSRFToken checks that tokenString is a CSRF token for tenantID.
func VerifyCSRFToken(tokenString string, tenantID int64, secretKey []byte) error {
	got, err := parse(tokenString, audienceCSRF, secretKey)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidCSRF, err)
	}
	if got != tenantID {
		return common.ErrInvalidCSRF
	}
	return nil
}
