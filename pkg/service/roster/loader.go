package roster

import (
	"context"
	"log/slog"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

type loader struct {
	mu      sync.Mutex
	path    string
	records []*model.RosterRecord
	loaded  bool

	storage *storage.Client
	sftp    SFTPConfig
}

var _ Loader = &loader{}

// Option is a functional option for loader configuration
type Option func(*loader)

// WithStorageClient sets the Cloud Storage client used for gs:// paths.
// Without it a client is created on first use with default credentials.
func WithStorageClient(client *storage.Client) Option {
	return func(l *loader) {
		l.storage = client
	}
}

// WithSFTP sets the credentials used for sftp:// paths
func WithSFTP(cfg SFTPConfig) Option {
	return func(l *loader) {
		l.sftp = cfg
	}
}

// New creates a roster loader for the given path. The path may be a local
// file, gs://bucket/object or sftp://user@host[:port]/path.
func New(path string, opts ...Option) Loader {
	l := &loader{path: path}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) Load(ctx context.Context) ([]*model.RosterRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.snapshot(), nil
	}

	if l.path == "" {
		return nil, goerr.Wrap(ErrRosterUnavailable, "roster path is not configured")
	}

	data, err := l.fetch(ctx, l.path)
	if err != nil {
		return nil, goerr.Wrap(ErrRosterUnavailable, "failed to read roster",
			goerr.V(PathKey, l.path), goerr.V("error", err.Error()))
	}

	records, err := Parse(l.path, data)
	if err != nil {
		return nil, goerr.Wrap(ErrRosterUnavailable, "failed to parse roster",
			goerr.V(PathKey, l.path), goerr.V("error", err.Error()))
	}

	l.records = records
	l.loaded = true
	logging.From(ctx).Info("Roster loaded",
		slog.String("path", l.path),
		slog.Int("records", len(records)),
	)

	return l.snapshot(), nil
}

func (l *loader) SetPath(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if path == l.path {
		return
	}
	l.path = path
	l.records = nil
	l.loaded = false
}

func (l *loader) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// snapshot must be called with the lock held
func (l *loader) snapshot() []*model.RosterRecord {
	out := make([]*model.RosterRecord, len(l.records))
	copy(out, l.records)
	return out
}
