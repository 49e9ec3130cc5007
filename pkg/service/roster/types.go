package roster

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrRosterUnavailable is returned when the roster cannot be read or
	// parsed. Callers degrade to an empty roster.
	ErrRosterUnavailable = goerr.New("roster unavailable")

	// ErrUnsupportedSource is returned for paths with an unknown scheme
	ErrUnsupportedSource = goerr.New("unsupported roster source")
)

// Context keys for error values
const (
	PathKey   = "roster_path"
	FormatKey = "roster_format"
	RowKey    = "roster_row"
)

// Loader reads the HR roster export. Parsed records are cached until the
// path changes.
type Loader interface {
	// Load returns the roster records. The returned records are shared with
	// the cache and must not be modified.
	Load(ctx context.Context) ([]*model.RosterRecord, error)

	// SetPath points the loader at another file. The cache is dropped only
	// when the path differs from the current one.
	SetPath(path string)

	Path() string
}
