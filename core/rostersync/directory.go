package rostersync

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/favorite"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/store"
)

func (svc *Service) GetIdentity(ctx context.Context, identityID int) (identity.Identity, error) {
	var ident identity.Identity
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		ident, err = tx.Identities().GetIdentity(ctx, identityID)
		return errors.Wrap(err, "finding identity")
	})
	if err != nil {
		return identity.Identity{}, err
	}
	return ident, nil
}

// AddFavorite links a student to an active roster entry.
func (svc *Service) AddFavorite(ctx context.Context, studentID, rosterID int) (favorite.Link, error) {
	var link favorite.Link
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		stud, err := tx.Identities().GetIdentity(ctx, studentID)
		if err != nil {
			return errors.Wrap(err, "finding identity")
		}
		if !stud.IsStudent() {
			return core.NewInvalidStateError("only students keep favorites")
		}
		entry, err := tx.Roster().GetEntry(ctx, rosterID)
		if err != nil {
			return errors.Wrap(err, "finding roster entry")
		}
		if !entry.Active {
			return core.NewInvalidStateError("professor is not active")
		}
		link, err = tx.Favorites().AddFavorite(ctx, favorite.Link{StudentID: stud.ID, ProfessorID: entry.ID})
		return errors.Wrap(err, "adding favorite")
	})
	if err != nil {
		return favorite.Link{}, err
	}
	return link, nil
}

func (svc *Service) QueryFavorites(ctx context.Context, studentID int) ([]favorite.Link, error) {
	var links []favorite.Link
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		links, err = tx.Favorites().QueryFavorites(ctx, studentID)
		return errors.Wrap(err, "querying favorites")
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}
