package config

import (
	"context"
	"log/slog"

	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Auth holds bearer token verification settings. The tenant comes from the
// directory configuration.
type Auth struct {
	clientID   string
	jwksURL    string
	noAuthSub  string
	noAuthMail string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-client-id",
			Usage:       "Client ID (audience) of the API application",
			Category:    "Authentication",
			Sources:     cli.EnvVars("LAUREL_AUTH_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "auth-jwks-url",
			Usage:       "Override the JWKS endpoint of the tenant",
			Category:    "Authentication",
			Sources:     cli.EnvVars("LAUREL_AUTH_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given directory object ID with admin role (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("LAUREL_NO_AUTH"),
			Destination: &x.noAuthSub,
		},
		&cli.StringFlag{
			Name:        "no-auth-email",
			Usage:       "Email of the no-auth user, used when the object ID is not stored yet",
			Category:    "Authentication",
			Sources:     cli.EnvVars("LAUREL_NO_AUTH_EMAIL"),
			Destination: &x.noAuthMail,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", x.clientID),
		slog.String("jwks_url", x.jwksURL),
		slog.Bool("no_auth", x.noAuthSub != ""),
	)
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthSub != ""
}

// Configure returns the authenticator. No-auth mode takes precedence over
// token verification.
func (x *Auth) Configure(ctx context.Context, tenantID string) (usecase.AuthUseCaseInterface, error) {
	if x.noAuthSub != "" {
		if x.clientID != "" {
			logging.From(ctx).Warn("--no-auth is set, ignoring --auth-client-id")
		}
		return usecase.NewNoAuthnUseCase(x.noAuthSub, x.noAuthMail, ""), nil
	}

	if tenantID == "" || x.clientID == "" {
		return nil, goerr.Wrap(ErrMissingParameter,
			"authentication requires --directory-tenant-id and --auth-client-id, or --no-auth")
	}

	var opts []usecase.AuthOption
	if x.jwksURL != "" {
		opts = append(opts, usecase.WithJWKSURL(x.jwksURL))
	}
	authUC, err := usecase.NewAuthUseCase(ctx, tenantID, x.clientID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure token verification")
	}
	return authUC, nil
}
