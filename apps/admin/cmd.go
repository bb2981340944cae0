package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/admission"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type commandLine struct {
	db           *sql.DB
	conf         *core.Config
	rosterSvc    *rostersync.Service
	admissionSvc *admission.Service

	format string
}

// newRootCommand creates the admin command tree over cli's services.
func newRootCommand(cli *commandLine) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Unimap administration",
		Long:          "Manage identities, the professor roster and the weekly schedule from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cli.format != formatText && cli.format != formatJSON {
				return errors.Errorf("invalid format %q: must be one of text, json", cli.format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cli.format, "format", formatText, "output format (text|json)")

	cmd.AddCommand(cli.migrateCommand())

	cmd.AddCommand(cli.addIdentityCommand())
	cmd.AddCommand(cli.changeRoleCommand())
	cmd.AddCommand(cli.changeEmailCommand())
	cmd.AddCommand(cli.deleteIdentityCommand())

	cmd.AddCommand(cli.rosterStatusCommand())
	cmd.AddCommand(cli.deleteRosterCommand())
	cmd.AddCommand(cli.auditCommand())

	cmd.AddCommand(cli.addRoomCommand())
	cmd.AddCommand(cli.admitCommand())
	cmd.AddCommand(cli.sessionsCommand())
	cmd.AddCommand(cli.setSessionCommand("cancel", false))
	cmd.AddCommand(cli.setSessionCommand("reactivate", true))
	cmd.AddCommand(cli.visibleCommand())

	return cmd
}

// output writes v as JSON, or calls text in text format.
func (cli *commandLine) output(w io.Writer, v interface{}, text func(w io.Writer)) error {
	if cli.format == formatJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding output")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	text(w)
	return nil
}

func printWarnings(w io.Writer, warnings []rostersync.Warning) {
	for _, wrn := range warnings {
		fmt.Fprintf(w, "warning [%s]: %s\n", wrn.Code, wrn.Message)
	}
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", arg)
	}
	return id, nil
}
