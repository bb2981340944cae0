package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
)

func (cli *commandLine) addIdentityCommand() *cobra.Command {
	var ni identity.NewIdentity
	cmd := &cobra.Command{
		Use:   "add-identity",
		Short: "Register an identity; professors also get a roster entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, reg, err := cli.rosterSvc.RegisterIdentity(cmd.Context(), ni)
			if err != nil {
				return err
			}
			out := struct {
				Identity     identity.Identity       `json:"identity"`
				Registration rostersync.Registration `json:"registration"`
			}{ident, reg}
			return cli.output(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "identity %d created: %s <%s> %s\n", ident.ID, ident.Name, ident.Email, ident.Role)
				fmt.Fprintf(w, "roster: %s\n", reg.RosterAction)
				printWarnings(w, reg.Warnings)
			})
		},
	}
	cmd.Flags().StringVar(&ni.Name, "name", "", "full name")
	cmd.Flags().StringVar(&ni.Email, "email", "", "email address")
	cmd.Flags().StringVar(&ni.Role, "role", identity.RoleStudent, "student|professor|admin")
	cmd.Flags().StringVar(&ni.Course, "course", "", "course (students only)")
	cmd.Flags().IntVar(&ni.CohortPeriod, "period", 0, "cohort period (students only)")
	return cmd
}

func (cli *commandLine) changeRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "change-role <identity-id> <role>",
		Short: "Change an identity's role and sync the roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := cli.rosterSvc.ChangeRole(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "identity %d: %s -> %s (roster: %s)\n", res.IdentityID, res.OldRole, res.NewRole, res.RosterAction)
				printWarnings(w, res.Warnings)
			})
		},
	}
}

func (cli *commandLine) changeEmailCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "change-email <identity-id> <email>",
		Short: "Change an identity's email and re-key its roster entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := cli.rosterSvc.ChangeEmail(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), res, func(w io.Writer) {
				rekeyed := "no roster entry"
				if res.RosterRekeyed {
					rekeyed = "roster re-keyed"
				}
				fmt.Fprintf(w, "identity %d: %s -> %s (%s)\n", res.IdentityID, res.OldEmail, res.NewEmail, rekeyed)
				printWarnings(w, res.Warnings)
			})
		},
	}
}

func (cli *commandLine) deleteIdentityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-identity <identity-id>",
		Short: "Delete an identity; a professor's roster entry goes with its sessions and favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := cli.rosterSvc.DeleteIdentity(cmd.Context(), id)
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "identity %d deleted\n", id)
				if res.RosterDeleted {
					fmt.Fprintf(w, "roster entry deleted: %d sessions, %d favorites removed\n", res.SessionsRemoved, res.FavoritesRemoved)
				}
				printWarnings(w, res.Warnings)
			})
		},
	}
}
