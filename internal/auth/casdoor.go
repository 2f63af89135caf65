package auth

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-attempt-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// CasdoorVerifier verifies tokens issued by a Casdoor identity provider.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg CasdoorConfig) *CasdoorVerifier {
	return &CasdoorVerifier{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.Organization,
			cfg.Application,
		),
	}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID := claims.User.Id
	if userID == "" {
		userID = claims.User.Owner + "/" + claims.User.Name
	}
	if claims.User.Name == "" && claims.User.Id == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	role := models.RoleUser
	if claims.User.IsAdmin {
		role = models.RoleAdmin
	}

	identity := &Identity{UserID: userID, Role: role}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	return identity, nil
}
