package roster

import (
	"context"
	"time"

	"github.com/skapefps/Unimap-sub001/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("roster entry")
	ErrEmailExists = core.NewConflictError("a roster entry with this email already exists")
)

// Entry is a professor directory record. It is tied to an identity by email only.
type Entry struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type QueryFilter struct {
	Active *bool
}

type Repository interface {
	// CreateEntry fails with ErrEmailExists: at most one entry exists per email.
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	GetEntry(ctx context.Context, id int) (Entry, error)
	GetEntryByEmail(ctx context.Context, email string) (Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) (Entry, error)
	DeleteEntry(ctx context.Context, id int) error
	QueryEntries(ctx context.Context, filter QueryFilter) ([]Entry, error)
}
