package config

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/laurel-hq/laurel/pkg/service/roster"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Roster holds the location of the HR roster export and the credentials
// of remote sources
type Roster struct {
	path               string
	sftpPassword       string
	sftpPrivateKeyFile string
	sftpKnownHosts     string
	sftpInsecure       bool
	sftpTimeout        time.Duration
}

func (x *Roster) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "roster-path",
			Usage:       "HR roster export: local path, gs://bucket/object or sftp://user@host/path (.csv or .xlsx)",
			Category:    "Roster",
			Sources:     cli.EnvVars("LAUREL_ROSTER_PATH"),
			Destination: &x.path,
		},
		&cli.StringFlag{
			Name:        "roster-sftp-password",
			Usage:       "Password for sftp:// roster paths",
			Category:    "Roster",
			Sources:     cli.EnvVars("LAUREL_ROSTER_SFTP_PASSWORD"),
			Destination: &x.sftpPassword,
		},
		&cli.StringFlag{
			Name:        "roster-sftp-private-key",
			Usage:       "Private key file for sftp:// roster paths",
			Category:    "Roster",
			Sources:     cli.EnvVars("LAUREL_ROSTER_SFTP_PRIVATE_KEY"),
			Destination: &x.sftpPrivateKeyFile,
		},
		&cli.StringFlag{
			Name:        "roster-sftp-known-hosts",
			Usage:       "known_hosts file used to verify the SFTP server",
			Category:    "Roster",
			Sources:     cli.EnvVars("LAUREL_ROSTER_SFTP_KNOWN_HOSTS"),
			Destination: &x.sftpKnownHosts,
		},
		&cli.BoolFlag{
			Name:        "roster-sftp-insecure",
			Usage:       "Skip SFTP host key verification (development only)",
			Category:    "Roster",
			Sources:     cli.EnvVars("LAUREL_ROSTER_SFTP_INSECURE"),
			Destination: &x.sftpInsecure,
		},
		&cli.DurationFlag{
			Name:        "roster-sftp-timeout",
			Usage:       "SFTP connection timeout",
			Value:       30 * time.Second,
			Category:    "Roster",
			Sources:     cli.EnvVars("LAUREL_ROSTER_SFTP_TIMEOUT"),
			Destination: &x.sftpTimeout,
		},
	}
}

func (x Roster) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.Int("sftp_password.len", len(x.sftpPassword)),
		slog.String("sftp_private_key", x.sftpPrivateKeyFile),
		slog.Bool("sftp_insecure", x.sftpInsecure),
	)
}

// Configure returns the roster loader, or nil when no path is set. A
// Cloud Storage client is created up front with ctx for gs:// paths.
func (x *Roster) Configure(ctx context.Context) (roster.Loader, error) {
	if x.path == "" {
		return nil, nil
	}

	sftpCfg := roster.SFTPConfig{
		Password:              x.sftpPassword,
		KnownHostsFile:        x.sftpKnownHosts,
		InsecureIgnoreHostKey: x.sftpInsecure,
		Timeout:               x.sftpTimeout,
	}
	if x.sftpPrivateKeyFile != "" {
		// #nosec G304 - path is provided by the operator
		key, err := os.ReadFile(x.sftpPrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read sftp private key", goerr.V(ConfigPathKey, x.sftpPrivateKeyFile))
		}
		sftpCfg.PrivateKey = key
	}

	opts := []roster.Option{roster.WithSFTP(sftpCfg)}
	if strings.HasPrefix(x.path, "gs://") {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage client")
		}
		opts = append(opts, roster.WithStorageClient(client))
	}

	return roster.New(x.path, opts...), nil
}
