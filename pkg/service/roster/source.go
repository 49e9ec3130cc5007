package roster

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/laurel-hq/laurel/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// maxRosterSize bounds how much of a remote export is read
const maxRosterSize = 64 << 20

// SFTPConfig holds credentials for sftp:// roster paths. The user comes
// from the URL.
type SFTPConfig struct {
	Password              string
	PrivateKey            []byte
	KnownHostsFile        string
	InsecureIgnoreHostKey bool
	Timeout               time.Duration
}

func (l *loader) fetch(ctx context.Context, path string) ([]byte, error) {
	switch {
	case strings.HasPrefix(path, "gs://"):
		return l.fetchStorage(ctx, path)
	case strings.HasPrefix(path, "sftp://"):
		return l.fetchSFTP(ctx, path)
	case strings.Contains(path, "://"):
		return nil, goerr.Wrap(ErrUnsupportedSource, "unknown roster scheme", goerr.V(PathKey, path))
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read roster file", goerr.V(PathKey, path))
		}
		return data, nil
	}
}

func (l *loader) fetchStorage(ctx context.Context, path string) ([]byte, error) {
	bucket, object, ok := strings.Cut(strings.TrimPrefix(path, "gs://"), "/")
	if !ok || bucket == "" || object == "" {
		return nil, goerr.New("invalid gs:// roster path", goerr.V(PathKey, path))
	}

	if l.storage == nil {
		// ctx carries the per-load timeout; the client outlives it
		client, err := storage.NewClient(context.WithoutCancel(ctx))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage client")
		}
		l.storage = client
	}

	r, err := l.storage.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open roster object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(io.LimitReader(r, maxRosterSize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read roster object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	return data, nil
}

func (l *loader) fetchSFTP(ctx context.Context, path string) ([]byte, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid sftp:// roster path")
	}
	if u.User == nil || u.User.Username() == "" || u.Hostname() == "" || u.Path == "" {
		return nil, goerr.New("sftp roster path requires user, host and file",
			goerr.V("host", u.Hostname()))
	}

	sshCfg, err := l.sftp.clientConfig(u)
	if err != nil {
		return nil, err
	}

	port := u.Port()
	if port == "" {
		port = "22"
	}
	addr := net.JoinHostPort(u.Hostname(), port)

	type dialResult struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialResult, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialResult{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.client != nil {
				_ = r.client.Close()
			}
		}()
		return nil, goerr.Wrap(ctx.Err(), "sftp dial canceled", goerr.V("addr", addr))
	case r := <-ch:
		if r.err != nil {
			return nil, goerr.Wrap(r.err, "sftp dial failed", goerr.V("addr", addr))
		}
		sshClient = r.client
	}
	defer safe.Close(ctx, sshClient)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to start sftp session", goerr.V("addr", addr))
	}
	defer safe.Close(ctx, client)

	f, err := client.Open(u.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open remote roster", goerr.V("remote_path", u.Path))
	}
	defer safe.Close(ctx, f)

	data, err := io.ReadAll(io.LimitReader(f, maxRosterSize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read remote roster", goerr.V("remote_path", u.Path))
	}
	return data, nil
}

func (c SFTPConfig) clientConfig(u *url.URL) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if len(c.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(c.PrivateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse sftp private key")
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	password := c.Password
	if p, ok := u.User.Password(); ok && password == "" {
		password = p
	}
	if password != "" {
		auth = append(auth, ssh.Password(password))
	}
	if len(auth) == 0 {
		return nil, goerr.New("sftp roster source requires a password or private key")
	}

	var hostKeyCallback ssh.HostKeyCallback
	switch {
	case c.KnownHostsFile != "":
		cb, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load known_hosts", goerr.V("file", c.KnownHostsFile))
		}
		hostKeyCallback = cb
	case c.InsecureIgnoreHostKey:
		hostKeyCallback = ssh.InsecureIgnoreHostKey() // #nosec G106
	default:
		return nil, goerr.New("sftp roster source requires a known_hosts file or insecure host key opt-in")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &ssh.ClientConfig{
		User:            u.User.Username(),
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

// String hides credentials when the config is printed
func (c SFTPConfig) String() string {
	return fmt.Sprintf("SFTPConfig{KnownHostsFile:%q, InsecureIgnoreHostKey:%v}", c.KnownHostsFile, c.InsecureIgnoreHostKey)
}
