package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/skapefps/Unimap-sub001/core/identity"
)

const identityColumns = "id, name, email, role, course, cohort_period, deleted, version, created_at, updated_at"

type identityRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	Course       null.String `db:"course"`
	CohortPeriod null.Int    `db:"cohort_period"`
	Deleted      bool        `db:"deleted"`
	Version      int         `db:"version"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r identityRow) identity() identity.Identity {
	return identity.Identity{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         r.Role,
		Course:       r.Course.String,
		CohortPeriod: r.CohortPeriod.Int,
		Deleted:      r.Deleted,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type identityRepository struct {
	querier
}

var _ identity.Repository = (*identityRepository)(nil)

func (repo *identityRepository) CreateIdentity(ctx context.Context, ident identity.Identity) (identity.Identity, error) {
	ident.CreatedAt = now()
	ident.UpdatedAt = ident.CreatedAt
	ident.Version = 1
	id, err := repo.insert(ctx,
		`INSERT INTO identities (name, email, role, course, cohort_period, deleted, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ident.Name, ident.Email, ident.Role,
		null.NewString(ident.Course, ident.Course != ""),
		null.NewInt(ident.CohortPeriod, ident.CohortPeriod != 0),
		ident.Deleted, ident.Version, ident.CreatedAt, ident.UpdatedAt,
	)
	if err != nil {
		return identity.Identity{}, trapErr(err, nil, identity.ErrEmailExists, "inserting identity")
	}
	ident.ID = id
	return ident, nil
}

func (repo *identityRepository) getOne(ctx context.Context, cond string, arg interface{}) (identity.Identity, error) {
	var row identityRow
	err := repo.get(ctx, &row, "SELECT "+identityColumns+" FROM identities WHERE "+cond+" AND NOT deleted"+repo.forUpdate, arg)
	if err != nil {
		return identity.Identity{}, trapErr(err, identity.ErrNotFound, nil, "selecting identity")
	}
	return row.identity(), nil
}

func (repo *identityRepository) GetIdentity(ctx context.Context, id int) (identity.Identity, error) {
	return repo.getOne(ctx, "id = ?", id)
}

func (repo *identityRepository) GetIdentityByEmail(ctx context.Context, email string) (identity.Identity, error) {
	return repo.getOne(ctx, "email = ?", email)
}

func (repo *identityRepository) UpdateIdentity(ctx context.Context, ident identity.Identity) (identity.Identity, error) {
	ident.UpdatedAt = now()
	n, err := repo.execAffected(ctx,
		`UPDATE identities
		SET name = ?, email = ?, role = ?, course = ?, cohort_period = ?, deleted = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ? AND NOT deleted`,
		ident.Name, ident.Email, ident.Role,
		null.NewString(ident.Course, ident.Course != ""),
		null.NewInt(ident.CohortPeriod, ident.CohortPeriod != 0),
		ident.Deleted, ident.UpdatedAt, ident.ID, ident.Version,
	)
	if err != nil {
		return identity.Identity{}, trapErr(err, nil, identity.ErrEmailExists, "updating identity")
	}
	if n == 0 {
		// tell a missing row from a concurrent update
		if _, err = repo.GetIdentity(ctx, ident.ID); err != nil {
			return identity.Identity{}, err
		}
		return identity.Identity{}, identity.ErrStale
	}
	ident.Version++
	return ident, nil
}

func (repo *identityRepository) QueryIdentities(ctx context.Context, filter identity.QueryFilter) ([]identity.Identity, error) {
	var (
		conds []string
		args  []interface{}
	)
	if !filter.IncludeDeleted {
		conds = append(conds, "NOT deleted")
	}
	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, filter.Role)
	}

	var rows []identityRow
	if err := repo.selectAll(ctx, &rows, "SELECT "+identityColumns+" FROM identities"+where(conds)+" ORDER BY id", args...); err != nil {
		return nil, errors.Wrap(err, "selecting identities")
	}
	idents := make([]identity.Identity, 0, len(rows))
	for _, r := range rows {
		idents = append(idents, r.identity())
	}
	return idents, nil
}
