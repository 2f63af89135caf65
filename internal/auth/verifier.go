package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired due to inactivity")
)

// Identity is the verified caller resolved from a bearer token.
type Identity struct {
	UserID   string          `json:"user_id"`
	Role     models.UserRole `json:"role"`
	IssuedAt time.Time       `json:"issued_at"`
}

func (i *Identity) Caller() models.Caller {
	return models.Caller{UserID: i.UserID, Role: i.Role}
}

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HMACVerifier verifies HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
	issuer string
}

func NewHMACVerifier(secret, issuer string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), issuer: issuer}
}

// Issue signs a token. The service itself never logs users in; this exists for
// tooling and tests.
func (v *HMACVerifier) Issue(userID string, role models.UserRole, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		Sub:  userID,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *HMACVerifier) Verify(ctx context.Context, tokenStr string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return identityFromClaims(claims.Sub, claims.Role, claims.IssuedAt)
}

func identityFromClaims(subject, role string, issuedAt *jwt.NumericDate) (*Identity, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	userRole := models.UserRole(role)
	if role == "" {
		userRole = models.RoleUser
	}
	if !userRole.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	identity := &Identity{UserID: subject, Role: userRole}
	if issuedAt != nil {
		identity.IssuedAt = issuedAt.Time
	}
	return identity, nil
}
