package config

import (
	"context"
	"log/slog"

	"github.com/laurel-hq/laurel/pkg/service/directory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Directory holds the application registration used to read the employee
// directory. The tenant is shared with token verification.
type Directory struct {
	tenantID     string
	clientID     string
	clientSecret string
	baseURL      string
}

func (x *Directory) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "directory-tenant-id",
			Usage:       "Directory tenant ID",
			Category:    "Directory",
			Sources:     cli.EnvVars("LAUREL_DIRECTORY_TENANT_ID"),
			Destination: &x.tenantID,
		},
		&cli.StringFlag{
			Name:        "directory-client-id",
			Usage:       "Client ID of the application allowed to read users",
			Category:    "Directory",
			Sources:     cli.EnvVars("LAUREL_DIRECTORY_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "directory-client-secret",
			Usage:       "Client secret of the directory application",
			Category:    "Directory",
			Sources:     cli.EnvVars("LAUREL_DIRECTORY_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
		&cli.StringFlag{
			Name:        "directory-base-url",
			Usage:       "Graph API endpoint",
			Value:       directory.DefaultBaseURL,
			Category:    "Directory",
			Sources:     cli.EnvVars("LAUREL_DIRECTORY_BASE_URL"),
			Destination: &x.baseURL,
		},
	}
}

func (x Directory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tenant_id", x.tenantID),
		slog.String("client_id", x.clientID),
		slog.Int("client_secret.len", len(x.clientSecret)),
		slog.String("base_url", x.baseURL),
	)
}

// TenantID returns the directory tenant
func (x *Directory) TenantID() string {
	return x.tenantID
}

// IsConfigured returns true when all credentials are present
func (x *Directory) IsConfigured() bool {
	return x.tenantID != "" && x.clientID != "" && x.clientSecret != ""
}

// Configure returns the directory client, or nil when no credential is set.
// Partially set credentials are an error.
func (x *Directory) Configure(ctx context.Context) (directory.Service, error) {
	if x.tenantID == "" && x.clientID == "" && x.clientSecret == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.Wrap(ErrMissingParameter,
			"directory-tenant-id, directory-client-id and directory-client-secret must be set together")
	}

	var opts []directory.Option
	if x.baseURL != "" {
		opts = append(opts, directory.WithBaseURL(x.baseURL))
	}

	svc, err := directory.New(ctx, x.tenantID, x.clientID, x.clientSecret, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create directory client")
	}
	return svc, nil
}
