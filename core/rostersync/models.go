package rostersync

import "github.com/skapefps/Unimap-sub001/core/roster"

// RosterAction tells what a role change did to the roster.
type RosterAction string

const (
	ActionCreated     RosterAction = "created"
	ActionReactivated RosterAction = "reactivated"
	ActionDeactivated RosterAction = "deactivated"
	ActionNone        RosterAction = "none"
)

// WarningOrphanSync is the code of warnings raised when a sync finds no counterpart record.
const WarningOrphanSync = "orphan_sync"

// Warning is informational. It never blocks the mutation that raised it.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func orphan(msg string) Warning {
	return Warning{Code: WarningOrphanSync, Message: msg}
}

type (
	RoleChange struct {
		IdentityID   int          `json:"identity_id"`
		OldRole      string       `json:"old_role"`
		NewRole      string       `json:"new_role"`
		RosterAction RosterAction `json:"roster_action"`
		Warnings     []Warning    `json:"warnings,omitempty"`
	}

	Registration struct {
		IdentityID   int          `json:"identity_id"`
		RosterAction RosterAction `json:"roster_action"`
		Warnings     []Warning    `json:"warnings,omitempty"`
	}

	EmailChange struct {
		IdentityID    int       `json:"identity_id"`
		OldEmail      string    `json:"old_email"`
		NewEmail      string    `json:"new_email"`
		RosterRekeyed bool      `json:"roster_rekeyed"`
		Warnings      []Warning `json:"warnings,omitempty"`
	}

	IdentityDeletion struct {
		SessionsRemoved  int       `json:"sessions_removed"`
		FavoritesRemoved int       `json:"favorites_removed"`
		RosterDeleted    bool      `json:"roster_deleted"`
		Warnings         []Warning `json:"warnings,omitempty"`
	}

	RosterDeletion struct {
		SessionsRemoved  int  `json:"sessions_removed"`
		FavoritesRemoved int  `json:"favorites_removed"`
		IdentityDemoted  bool `json:"identity_demoted"`
	}

	StatusToggle struct {
		Entry        roster.Entry `json:"entry"`
		IdentityID   int          `json:"identity_id,omitempty"`
		IdentityRole string       `json:"identity_role,omitempty"`
		RoleChanged  bool         `json:"role_changed"`
		Warnings     []Warning    `json:"warnings,omitempty"`
	}
)

// Violation kinds reported by Audit.
const (
	// a professor identity has no active roster entry
	ViolationMissingRoster = "missing_roster"
	// a non-professor identity shares its email with an active roster entry
	ViolationStaleRoster = "stale_roster"
)

type Violation struct {
	Kind       string `json:"kind"`
	IdentityID int    `json:"identity_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	RosterID   int    `json:"roster_id,omitempty"`
}
