package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/skapefps/Unimap-sub001/core/identity"
)

type identityRepository struct {
	t *tables
}

var _ identity.Repository = (*identityRepository)(nil)

func (repo *identityRepository) emailTaken(email string, exclID int) bool {
	for _, ident := range repo.t.identity {
		if !ident.Deleted && ident.Email == email && ident.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *identityRepository) CreateIdentity(ctx context.Context, ident identity.Identity) (identity.Identity, error) {
	if repo.emailTaken(ident.Email, 0) {
		return identity.Identity{}, identity.ErrEmailExists
	}
	now := time.Now().UTC()
	repo.t.pkCount.identity++
	ident.ID = repo.t.pkCount.identity
	ident.Version = 1
	ident.CreatedAt = now
	ident.UpdatedAt = now
	repo.t.identity[ident.ID] = ident
	return ident, nil
}

func (repo *identityRepository) GetIdentity(ctx context.Context, id int) (identity.Identity, error) {
	if ident, ok := repo.t.identity[id]; ok && !ident.Deleted {
		return ident, nil
	}
	return identity.Identity{}, identity.ErrNotFound
}

func (repo *identityRepository) GetIdentityByEmail(ctx context.Context, email string) (identity.Identity, error) {
	for _, ident := range repo.t.identity {
		if !ident.Deleted && ident.Email == email {
			return ident, nil
		}
	}
	return identity.Identity{}, identity.ErrNotFound
}

func (repo *identityRepository) UpdateIdentity(ctx context.Context, ident identity.Identity) (identity.Identity, error) {
	orig, ok := repo.t.identity[ident.ID]
	if !ok || orig.Deleted {
		return identity.Identity{}, identity.ErrNotFound
	}
	if orig.Version != ident.Version {
		return identity.Identity{}, identity.ErrStale
	}
	if !ident.Deleted && repo.emailTaken(ident.Email, ident.ID) {
		return identity.Identity{}, identity.ErrEmailExists
	}
	ident.Version++
	ident.CreatedAt = orig.CreatedAt
	ident.UpdatedAt = time.Now().UTC()
	repo.t.identity[ident.ID] = ident
	return ident, nil
}

func (repo *identityRepository) QueryIdentities(ctx context.Context, filter identity.QueryFilter) ([]identity.Identity, error) {
	idents := make([]identity.Identity, 0, len(repo.t.identity))
	for _, ident := range repo.t.identity {
		if ident.Deleted && !filter.IncludeDeleted {
			continue
		}
		if filter.Role != "" && ident.Role != filter.Role {
			continue
		}
		idents = append(idents, ident)
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i].ID < idents[j].ID })
	return idents, nil
}
