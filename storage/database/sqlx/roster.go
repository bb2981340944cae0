package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/roster"
)

const rosterColumns = "id, name, email, active, created_at, updated_at"

type rosterRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r rosterRow) entry() roster.Entry {
	return roster.Entry{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Active:    r.Active,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type rosterRepository struct {
	querier
}

var _ roster.Repository = (*rosterRepository)(nil)

func (repo *rosterRepository) CreateEntry(ctx context.Context, entry roster.Entry) (roster.Entry, error) {
	entry.CreatedAt = now()
	entry.UpdatedAt = entry.CreatedAt
	id, err := repo.insert(ctx,
		"INSERT INTO roster (name, email, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		entry.Name, entry.Email, entry.Active, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return roster.Entry{}, trapErr(err, nil, roster.ErrEmailExists, "inserting roster entry")
	}
	entry.ID = id
	return entry, nil
}

func (repo *rosterRepository) getOne(ctx context.Context, cond string, arg interface{}) (roster.Entry, error) {
	var row rosterRow
	if err := repo.get(ctx, &row, "SELECT "+rosterColumns+" FROM roster WHERE "+cond+repo.forUpdate, arg); err != nil {
		return roster.Entry{}, trapErr(err, roster.ErrNotFound, nil, "selecting roster entry")
	}
	return row.entry(), nil
}

func (repo *rosterRepository) GetEntry(ctx context.Context, id int) (roster.Entry, error) {
	return repo.getOne(ctx, "id = ?", id)
}

func (repo *rosterRepository) GetEntryByEmail(ctx context.Context, email string) (roster.Entry, error) {
	return repo.getOne(ctx, "email = ?", email)
}

func (repo *rosterRepository) UpdateEntry(ctx context.Context, entry roster.Entry) (roster.Entry, error) {
	entry.UpdatedAt = now()
	n, err := repo.execAffected(ctx,
		"UPDATE roster SET name = ?, email = ?, active = ?, updated_at = ? WHERE id = ?",
		entry.Name, entry.Email, entry.Active, entry.UpdatedAt, entry.ID,
	)
	if err != nil {
		return roster.Entry{}, trapErr(err, nil, roster.ErrEmailExists, "updating roster entry")
	}
	if n == 0 {
		return roster.Entry{}, roster.ErrNotFound
	}
	return entry, nil
}

// DeleteEntry fails with a store error while sessions or favorites still reference the entry.
func (repo *rosterRepository) DeleteEntry(ctx context.Context, id int) error {
	n, err := repo.execAffected(ctx, "DELETE FROM roster WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting roster entry")
	}
	if n == 0 {
		return roster.ErrNotFound
	}
	return nil
}

func (repo *rosterRepository) QueryEntries(ctx context.Context, filter roster.QueryFilter) ([]roster.Entry, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, *filter.Active)
	}

	var rows []rosterRow
	if err := repo.selectAll(ctx, &rows, "SELECT "+rosterColumns+" FROM roster"+where(conds)+" ORDER BY id", args...); err != nil {
		return nil, errors.Wrap(err, "selecting roster entries")
	}
	entries := make([]roster.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}
