// Package backend is the generic table-scoped client the panel uses for all
// data access: select, insert, update, delete and realtime subscribe.
// Repositories never write SQL themselves; they describe rows and filters.
package backend

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("backend: row not found")
	ErrUnfiltered        = errors.New("backend: update/delete without filters")
	ErrEmptyRow          = errors.New("backend: empty row")
	ErrInvalidIdentifier = errors.New("backend: invalid identifier")
)

// Row is a column -> value set for insert and update.
type Row map[string]any

// Client is the table-scoped CRUD surface.
type Client interface {
	// Select scans all matching rows into dest (pointer to slice).
	Select(ctx context.Context, table string, dest any, opts ...Option) error
	// Get scans exactly one row into dest or returns ErrNotFound.
	Get(ctx context.Context, table string, dest any, opts ...Option) error
	// Insert writes row; when dest is not nil the stored row is scanned back into it.
	Insert(ctx context.Context, table string, row Row, dest any) error
	Update(ctx context.Context, table string, row Row, opts ...Option) (int64, error)
	Delete(ctx context.Context, table string, opts ...Option) (int64, error)
}

// Change is one realtime notification about a table row.
type Change struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    int64  `json:"id"`
}

// Resync is published to every subscriber when the notification stream was
// interrupted and changes may have been missed.
const Resync = "resync"

// Subscriber hands out per-table change feeds. The returned func cancels the
// subscription and closes the channel.
type Subscriber interface {
	Subscribe(table string) (<-chan Change, func())
}
