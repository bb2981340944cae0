// Package rostersync keeps professor identities and roster entries consistent.
//
// The two records are joined by email only. Every operation re-resolves the
// counterpart by email inside its transaction, since either side can be edited
// on its own. After each operation, every live professor identity has exactly
// one active roster entry with its email, and no other live identity shares its
// email with an active entry.
package rostersync

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/roster"
	"github.com/skapefps/Unimap-sub001/core/store"
)

type Service struct {
	store     store.Store
	validator *core.Validator
	logger    core.Logger
}

func NewService(st store.Store, v *core.Validator, logger core.Logger) *Service {
	return &Service{store: st, validator: v, logger: logger}
}

func (svc *Service) logWarnings(warnings []Warning) {
	for _, w := range warnings {
		svc.logger.Warn(w.Message, map[string]interface{}{"code": w.Code})
	}
}

// RegisterIdentity creates an identity. A professor gets its roster entry in the same transaction;
// any other role deactivates an active entry left under its email.
func (svc *Service) RegisterIdentity(ctx context.Context, ni identity.NewIdentity) (identity.Identity, Registration, error) {
	if err := ni.Validate(svc.validator); err != nil {
		return identity.Identity{}, Registration{}, err
	}
	ident := identity.Identity{
		Name:         ni.Name,
		Email:        ni.Email,
		Role:         ni.Role,
		Course:       ni.Course,
		CohortPeriod: ni.CohortPeriod,
	}
	if !ident.IsStudent() {
		ident.ClearAcademics()
	}

	reg := Registration{RosterAction: ActionNone}
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		ident, err = tx.Identities().CreateIdentity(ctx, ident)
		if err != nil {
			return errors.Wrap(err, "creating identity")
		}
		reg.IdentityID = ident.ID
		if ident.IsProfessor() {
			reg.RosterAction, reg.Warnings, err = enterProfessor(ctx, tx, ident)
		} else {
			reg.RosterAction, reg.Warnings, err = releaseRosterEntry(ctx, tx, ident)
		}
		return err
	})
	if err != nil {
		return identity.Identity{}, Registration{}, err
	}
	svc.logWarnings(reg.Warnings)
	return ident, reg, nil
}

// ChangeRole sets the identity's role and brings the roster in line.
func (svc *Service) ChangeRole(ctx context.Context, identityID int, newRole string) (RoleChange, error) {
	newRole = core.CleanString(newRole, true /* lower */)
	if err := svc.validator.Var("role", newRole, "required,role"); err != nil {
		return RoleChange{}, err
	}

	res := RoleChange{IdentityID: identityID, NewRole: newRole, RosterAction: ActionNone}
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		ident, err := tx.Identities().GetIdentity(ctx, identityID)
		if err != nil {
			return errors.Wrap(err, "finding identity")
		}
		res.OldRole = ident.Role
		if ident.Role == newRole {
			return nil
		}

		ident.Role = newRole
		if !ident.IsStudent() {
			ident.ClearAcademics()
		}
		if ident, err = tx.Identities().UpdateIdentity(ctx, ident); err != nil {
			return errors.Wrap(err, "updating identity")
		}
		res.RosterAction, res.Warnings, err = syncRoleChange(ctx, tx, ident, res.OldRole, newRole)
		return err
	})
	if err != nil {
		return RoleChange{}, err
	}
	svc.logWarnings(res.Warnings)
	return res, nil
}

// ChangeEmail re-keys the identity and, when present, its roster entry.
// It fails with a conflict when any roster entry already uses the new email.
func (svc *Service) ChangeEmail(ctx context.Context, identityID int, newEmail string) (EmailChange, error) {
	newEmail = core.CleanString(newEmail)
	if err := svc.validator.Var("email", newEmail, "required,email"); err != nil {
		return EmailChange{}, err
	}

	res := EmailChange{IdentityID: identityID, NewEmail: newEmail}
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		ident, err := tx.Identities().GetIdentity(ctx, identityID)
		if err != nil {
			return errors.Wrap(err, "finding identity")
		}
		res.OldEmail = ident.Email
		if ident.Email == newEmail {
			return nil
		}

		oldEntry, err := tx.Roster().GetEntryByEmail(ctx, ident.Email)
		hasEntry := err == nil
		if err != nil && errors.Cause(err) != roster.ErrNotFound {
			return errors.Wrap(err, "finding roster entry by old email")
		}
		switch _, err = tx.Roster().GetEntryByEmail(ctx, newEmail); {
		case err == nil:
			return errors.Wrapf(roster.ErrEmailExists, "re-keying roster entry to %s", newEmail)
		case errors.Cause(err) != roster.ErrNotFound:
			return errors.Wrap(err, "finding roster entry by new email")
		}

		ident.Email = newEmail
		if _, err = tx.Identities().UpdateIdentity(ctx, ident); err != nil {
			return errors.Wrap(err, "updating identity")
		}

		if hasEntry {
			oldEntry.Email = newEmail
			if _, err = tx.Roster().UpdateEntry(ctx, oldEntry); err != nil {
				return errors.Wrap(err, "re-keying roster entry")
			}
			res.RosterRekeyed = true
		} else if ident.IsProfessor() {
			res.Warnings = append(res.Warnings, orphan(fmt.Sprintf("professor %d had no roster entry under %s", ident.ID, res.OldEmail)))
		}
		return nil
	})
	if err != nil {
		return EmailChange{}, err
	}
	svc.logWarnings(res.Warnings)
	return res, nil
}

// DeleteIdentity soft-deletes the identity. For a professor it also hard-deletes the
// roster entry with its sessions and favorites. Counts are only reported on commit;
// a failure removes nothing.
func (svc *Service) DeleteIdentity(ctx context.Context, identityID int) (IdentityDeletion, error) {
	var res IdentityDeletion
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		ident, err := tx.Identities().GetIdentity(ctx, identityID)
		if err != nil {
			return errors.Wrap(err, "finding identity")
		}
		ident.Deleted = true
		if _, err = tx.Identities().UpdateIdentity(ctx, ident); err != nil {
			return errors.Wrap(err, "soft-deleting identity")
		}
		if !ident.IsProfessor() {
			return nil
		}

		entry, err := tx.Roster().GetEntryByEmail(ctx, ident.Email)
		if err != nil {
			if errors.Cause(err) == roster.ErrNotFound {
				res.Warnings = append(res.Warnings, orphan(fmt.Sprintf("professor %d had no roster entry under %s", ident.ID, ident.Email)))
				return nil
			}
			return errors.Wrap(err, "finding roster entry by email")
		}
		if res.SessionsRemoved, res.FavoritesRemoved, err = cascadeRosterEntry(ctx, tx, entry.ID); err != nil {
			return err
		}
		res.RosterDeleted = true
		return nil
	})
	if err != nil {
		return IdentityDeletion{}, err
	}
	svc.logWarnings(res.Warnings)
	if res.RosterDeleted {
		svc.logger.Info("professor identity deleted", map[string]interface{}{
			"identity_id":       identityID,
			"sessions_removed":  res.SessionsRemoved,
			"favorites_removed": res.FavoritesRemoved,
		})
	}
	return res, nil
}

// DeleteRosterEntry hard-deletes an inactive roster entry with its sessions and favorites,
// and demotes a professor identity still holding its email. Active entries are refused.
func (svc *Service) DeleteRosterEntry(ctx context.Context, rosterID int) (RosterDeletion, error) {
	var res RosterDeletion
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		entry, err := tx.Roster().GetEntry(ctx, rosterID)
		if err != nil {
			return errors.Wrap(err, "finding roster entry")
		}
		if entry.Active {
			return core.NewInvalidStateError(fmt.Sprintf("roster entry %d is active, deactivate it first", rosterID))
		}
		if res.SessionsRemoved, res.FavoritesRemoved, err = cascadeRosterEntry(ctx, tx, entry.ID); err != nil {
			return err
		}

		ident, err := tx.Identities().GetIdentityByEmail(ctx, entry.Email)
		if err != nil {
			if errors.Cause(err) == identity.ErrNotFound {
				return nil
			}
			return errors.Wrap(err, "finding identity by email")
		}
		if !ident.IsProfessor() {
			return nil
		}
		ident.Role = identity.RoleStudent
		ident.ClearAcademics()
		if _, err = tx.Identities().UpdateIdentity(ctx, ident); err != nil {
			return errors.Wrap(err, "demoting identity")
		}
		res.IdentityDemoted = true
		return nil
	})
	if err != nil {
		return RosterDeletion{}, err
	}
	return res, nil
}

// SetRosterStatus toggles a roster entry and mirrors it on the identity with the same email:
// activating promotes to professor, deactivating demotes a professor to student.
// Admin identities are never changed, so activating an admin's entry is refused.
func (svc *Service) SetRosterStatus(ctx context.Context, rosterID int, active bool) (StatusToggle, error) {
	var res StatusToggle
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		entry, err := tx.Roster().GetEntry(ctx, rosterID)
		if err != nil {
			return errors.Wrap(err, "finding roster entry")
		}
		if entry.Active != active {
			entry.Active = active
			if entry, err = tx.Roster().UpdateEntry(ctx, entry); err != nil {
				return errors.Wrap(err, "updating roster entry")
			}
		}
		res.Entry = entry

		ident, err := tx.Identities().GetIdentityByEmail(ctx, entry.Email)
		if err != nil {
			if errors.Cause(err) == identity.ErrNotFound {
				res.Warnings = append(res.Warnings, orphan(fmt.Sprintf("no identity for roster entry %d (%s)", entry.ID, entry.Email)))
				return nil
			}
			return errors.Wrap(err, "finding identity by email")
		}
		res.IdentityID = ident.ID

		switch {
		case ident.IsAdmin():
			if active {
				return core.NewInvalidStateError(fmt.Sprintf("roster entry %d belongs to admin identity %d, change its role first", entry.ID, ident.ID))
			}
		case active && !ident.IsProfessor():
			ident.Role = identity.RoleProfessor
			ident.ClearAcademics()
			res.RoleChanged = true
		case !active && ident.IsProfessor():
			ident.Role = identity.RoleStudent
			res.RoleChanged = true
		}
		if res.RoleChanged {
			if ident, err = tx.Identities().UpdateIdentity(ctx, ident); err != nil {
				return errors.Wrap(err, "updating identity role")
			}
		}
		res.IdentityRole = ident.Role
		return nil
	})
	if err != nil {
		return StatusToggle{}, err
	}
	svc.logWarnings(res.Warnings)
	return res, nil
}

// Audit lists every live identity breaking the professor/roster correspondence.
func (svc *Service) Audit(ctx context.Context) ([]Violation, error) {
	violations := make([]Violation, 0)
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		idents, err := tx.Identities().QueryIdentities(ctx, identity.QueryFilter{})
		if err != nil {
			return errors.Wrap(err, "querying identities")
		}
		entries, err := tx.Roster().QueryEntries(ctx, roster.QueryFilter{})
		if err != nil {
			return errors.Wrap(err, "querying roster entries")
		}
		byEmail := make(map[string]roster.Entry, len(entries))
		for _, e := range entries {
			byEmail[e.Email] = e
		}

		for _, ident := range idents {
			entry, ok := byEmail[ident.Email]
			v := Violation{IdentityID: ident.ID, Email: ident.Email, Role: ident.Role, RosterID: entry.ID}
			switch {
			case ident.IsProfessor() && !(ok && entry.Active):
				v.Kind = ViolationMissingRoster
			case !ident.IsProfessor() && ok && entry.Active:
				v.Kind = ViolationStaleRoster
			default:
				continue
			}
			violations = append(violations, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return violations, nil
}
