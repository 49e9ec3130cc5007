package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/laurel-hq/laurel/pkg/domain/model/auth"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
)

// AuthUseCaseInterface turns a bearer token into the calling principal
type AuthUseCaseInterface interface {
	Authenticate(ctx context.Context, bearerToken string) (*auth.Principal, error)
	IsNoAuthn() bool
}

const (
	jwksRefreshInterval = 15 * time.Minute
	tokenClockSkew      = 10 * time.Second
)

// AuthUseCase verifies access tokens issued by the directory tenant
type AuthUseCase struct {
	clientID string
	issuer   string
	jwksURL  string
	keySet   jwk.Set
}

var _ AuthUseCaseInterface = &AuthUseCase{}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithJWKSURL overrides the tenant key endpoint
func WithJWKSURL(url string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = url
	}
}

// WithIssuer overrides the expected token issuer
func WithIssuer(issuer string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.issuer = issuer
	}
}

// WithKeySet verifies tokens against a fixed key set instead of fetching one
func WithKeySet(set jwk.Set) AuthOption {
	return func(uc *AuthUseCase) {
		uc.keySet = set
	}
}

// NewAuthUseCase creates a verifier for tokens whose audience is clientID.
// Signing keys are fetched lazily and refreshed in the background.
func NewAuthUseCase(ctx context.Context, tenantID, clientID string, options ...AuthOption) (*AuthUseCase, error) {
	if tenantID == "" || clientID == "" {
		return nil, goerr.New("tenant ID and client ID are required for authentication")
	}

	uc := &AuthUseCase{
		clientID: clientID,
		issuer:   fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", tenantID),
		jwksURL:  fmt.Sprintf("https://login.microsoftonline.com/%s/discovery/v2.0/keys", tenantID),
	}
	for _, opt := range options {
		opt(uc)
	}

	if uc.keySet == nil {
		cache := jwk.NewCache(ctx)
		if err := cache.Register(uc.jwksURL, jwk.WithMinRefreshInterval(jwksRefreshInterval)); err != nil {
			return nil, goerr.Wrap(err, "failed to register JWKS endpoint", goerr.V("jwks_url", uc.jwksURL))
		}
		uc.keySet = jwk.NewCachedSet(cache, uc.jwksURL)
	}

	return uc, nil
}

// IsNoAuthn returns false for AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// Authenticate verifies the signature, audience, issuer and lifetime of the
// token and maps its claims to a principal. Callers without a role claim
// are plain employees.
func (uc *AuthUseCase) Authenticate(ctx context.Context, bearerToken string) (*auth.Principal, error) {
	if bearerToken == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "bearer token is required")
	}

	token, err := jwt.ParseString(bearerToken,
		jwt.WithKeySet(uc.keySet),
		jwt.WithValidate(true),
		jwt.WithAudience(uc.clientID),
		jwt.WithIssuer(uc.issuer),
		jwt.WithAcceptableSkew(tokenClockSkew),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "failed to verify access token", goerr.V("error", err.Error()))
	}

	p := &auth.Principal{
		Subject: stringClaim(token, "oid"),
		Email:   stringClaim(token, "email"),
		Name:    stringClaim(token, "name"),
		Roles:   roleClaims(token),
	}
	if p.Subject == "" {
		p.Subject = token.Subject()
	}
	if p.Email == "" {
		p.Email = stringClaim(token, "preferred_username")
	}
	if p.Subject == "" {
		return nil, goerr.Wrap(ErrInvalidToken, "token has no subject")
	}

	return p, nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// roleClaims maps the app roles of the token. Unknown roles are ignored.
func roleClaims(token jwt.Token) []types.Role {
	roles := []types.Role{types.RoleEmployee}

	v, ok := token.Get("roles")
	if !ok {
		return roles
	}
	values, ok := v.([]interface{})
	if !ok {
		return roles
	}
	for _, raw := range values {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		role, err := types.ParseRole(strings.ToLower(strings.TrimSpace(s)))
		if err != nil || role == types.RoleEmployee {
			continue
		}
		roles = append(roles, role)
	}
	return roles
}
