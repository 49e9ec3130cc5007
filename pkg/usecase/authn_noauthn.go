package usecase

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/model/auth"
)

// NoAuthnUseCase authenticates every request as a fixed admin (for development/testing)
type NoAuthnUseCase struct {
	sub   string
	email string
	name  string
}

var _ AuthUseCaseInterface = &NoAuthnUseCase{}

// NewNoAuthnUseCase creates a NoAuthnUseCase that acts as the given user
func NewNoAuthnUseCase(sub, email, name string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		sub:   sub,
		email: email,
		name:  name,
	}
}

// Authenticate ignores the token and returns the development principal
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, bearerToken string) (*auth.Principal, error) {
	p := auth.NewDevelopmentPrincipal(uc.sub)
	p.Email = uc.email
	if uc.name != "" {
		p.Name = uc.name
	}
	return p, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
