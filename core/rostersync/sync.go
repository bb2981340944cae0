package rostersync

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/roster"
	"github.com/skapefps/Unimap-sub001/core/store"
)

// syncRoleChange applies a role transition of ident to the roster. ident already carries newRole.
func syncRoleChange(ctx context.Context, tx store.Tx, ident identity.Identity, oldRole, newRole string) (RosterAction, []Warning, error) {
	switch {
	case oldRole == newRole:
		return ActionNone, nil, nil
	case newRole == identity.RoleProfessor:
		return enterProfessor(ctx, tx, ident)
	case oldRole == identity.RoleProfessor:
		return leaveProfessor(ctx, tx, ident)
	}
	return ActionNone, nil, nil
}

// enterProfessor activates the roster entry with ident's email, creating it when missing.
func enterProfessor(ctx context.Context, tx store.Tx, ident identity.Identity) (RosterAction, []Warning, error) {
	entry, err := tx.Roster().GetEntryByEmail(ctx, ident.Email)
	switch {
	case err == nil:
		action := ActionNone
		if !entry.Active {
			entry.Active = true
			action = ActionReactivated
		}
		entry.Name = ident.Name
		if _, err = tx.Roster().UpdateEntry(ctx, entry); err != nil {
			return "", nil, errors.Wrap(err, "activating roster entry")
		}
		return action, nil, nil

	case errors.Cause(err) == roster.ErrNotFound:
		if _, err = tx.Roster().CreateEntry(ctx, roster.Entry{Name: ident.Name, Email: ident.Email, Active: true}); err != nil {
			return "", nil, errors.Wrap(err, "creating roster entry")
		}
		w := orphan(fmt.Sprintf("no roster entry under %s, created one for identity %d", ident.Email, ident.ID))
		return ActionCreated, []Warning{w}, nil

	default:
		return "", nil, errors.Wrap(err, "finding roster entry by email")
	}
}

// leaveProfessor deactivates the roster entry with ident's email. The entry is kept.
func leaveProfessor(ctx context.Context, tx store.Tx, ident identity.Identity) (RosterAction, []Warning, error) {
	entry, err := tx.Roster().GetEntryByEmail(ctx, ident.Email)
	if err != nil {
		if errors.Cause(err) == roster.ErrNotFound {
			w := orphan(fmt.Sprintf("no roster entry under %s to deactivate for identity %d", ident.Email, ident.ID))
			return ActionNone, []Warning{w}, nil
		}
		return "", nil, errors.Wrap(err, "finding roster entry by email")
	}
	if !entry.Active {
		return ActionNone, nil, nil
	}
	entry.Active = false
	if _, err = tx.Roster().UpdateEntry(ctx, entry); err != nil {
		return "", nil, errors.Wrap(err, "deactivating roster entry")
	}
	return ActionDeactivated, nil, nil
}

// releaseRosterEntry deactivates an active roster entry found under the email of a
// non-professor identity. Such an entry has no professor behind it.
func releaseRosterEntry(ctx context.Context, tx store.Tx, ident identity.Identity) (RosterAction, []Warning, error) {
	entry, err := tx.Roster().GetEntryByEmail(ctx, ident.Email)
	if err != nil {
		if errors.Cause(err) == roster.ErrNotFound {
			return ActionNone, nil, nil
		}
		return "", nil, errors.Wrap(err, "finding roster entry by email")
	}
	if !entry.Active {
		return ActionNone, nil, nil
	}
	entry.Active = false
	if _, err = tx.Roster().UpdateEntry(ctx, entry); err != nil {
		return "", nil, errors.Wrap(err, "deactivating roster entry")
	}
	w := orphan(fmt.Sprintf("roster entry %d under %s had no professor, deactivated for %s identity %d", entry.ID, ident.Email, ident.Role, ident.ID))
	return ActionDeactivated, []Warning{w}, nil
}

// cascadeRosterEntry hard-deletes the entry's sessions, favorites and then the entry itself.
func cascadeRosterEntry(ctx context.Context, tx store.Tx, rosterID int) (sessions, favorites int, err error) {
	if sessions, err = tx.Sessions().DeleteSessionsByProfessor(ctx, rosterID); err != nil {
		return 0, 0, errors.Wrap(err, "deleting sessions")
	}
	if favorites, err = tx.Favorites().DeleteFavoritesByProfessor(ctx, rosterID); err != nil {
		return 0, 0, errors.Wrap(err, "deleting favorites")
	}
	if err = tx.Roster().DeleteEntry(ctx, rosterID); err != nil {
		return 0, 0, errors.Wrap(err, "deleting roster entry")
	}
	return sessions, favorites, nil
}
