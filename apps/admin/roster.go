package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (cli *commandLine) rosterStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roster-status <roster-id> <active|inactive>",
		Short: "Activate or deactivate a roster entry and sync the matching identity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var active bool
			switch args[1] {
			case "active":
				active = true
			case "inactive":
			default:
				return errors.Errorf("invalid status %q: must be active or inactive", args[1])
			}

			res, err := cli.rosterSvc.SetRosterStatus(cmd.Context(), id, active)
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "roster entry %d (%s): %s\n", res.Entry.ID, res.Entry.Email, args[1])
				if res.RoleChanged {
					fmt.Fprintf(w, "identity %d is now %s\n", res.IdentityID, res.IdentityRole)
				}
				printWarnings(w, res.Warnings)
			})
		},
	}
}

func (cli *commandLine) deleteRosterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-roster <roster-id>",
		Short: "Delete an inactive roster entry with its sessions and favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := cli.rosterSvc.DeleteRosterEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "roster entry %d deleted: %d sessions, %d favorites removed\n", id, res.SessionsRemoved, res.FavoritesRemoved)
				if res.IdentityDemoted {
					fmt.Fprintln(w, "identity demoted to student")
				}
			})
		},
	}
}

func (cli *commandLine) auditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List identities breaking the professor/roster correspondence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			violations, err := cli.rosterSvc.Audit(cmd.Context())
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), violations, func(w io.Writer) {
				if len(violations) == 0 {
					fmt.Fprintln(w, "no violations")
					return
				}
				for _, v := range violations {
					fmt.Fprintf(w, "%s: identity %d %s (%s)", v.Kind, v.IdentityID, v.Email, v.Role)
					if v.RosterID != 0 {
						fmt.Fprintf(w, " roster entry %d", v.RosterID)
					}
					fmt.Fprintln(w)
				}
			})
		},
	}
}
