package source

import (
	"context"
	"errors"
)

// ErrUpstreamStatus marks a non-success response from the upstream system.
// A failed fetch leaves the session's dataset untouched.
var ErrUpstreamStatus = errors.New("upstream returned non-success status")

// DataSource fetches raw opportunity records for a sync. Records are
// key-value mappings; missing keys downstream become null values, not errors.
type DataSource interface {
	Fetch(ctx context.Context) ([]map[string]any, error)
}
