// Package dataset loads indicator datasets from the filesystem or a database.
// Every Load returns a freshly read DataFrame; nothing is cached between calls.
package dataset

import (
	"context"
	"errors"

	"forecast-go/internal/state"
)

// ErrNotFound is returned when the backing file or table does not exist
var ErrNotFound = errors.New("dataset not found")

// Source defines the interface for dataset backends
type Source interface {
	// Load reads the dataset identified by ref.
	Load(ctx context.Context, ref string) (*state.DataFrame, error)
	// Location describes where ref is expected to live, for error messages.
	Location(ref string) string
}
