package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skapefps/Unimap-sub001/core/schedule"
)

func (cli *commandLine) addRoomCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-room <name>",
		Short: "Create a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := cli.admissionSvc.CreateRoom(cmd.Context(), schedule.NewRoom{Name: args[0]})
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), room, func(w io.Writer) {
				fmt.Fprintf(w, "room %d created: %s\n", room.ID, room.Name)
			})
		},
	}
}

func (cli *commandLine) admitCommand() *cobra.Command {
	var (
		ns       schedule.NewSession
		weekdays []string
	)
	cmd := &cobra.Command{
		Use:   "admit",
		Short: "Create a weekly session on each given weekday, skipping existing ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := cli.admissionSvc.AdmitSessions(cmd.Context(), ns, weekdays)
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintln(w, res.Message)
				for _, s := range res.Created {
					fmt.Fprintf(w, "  created   %s session %d\n", s.Weekday, s.ID)
				}
				for _, s := range res.Duplicates {
					fmt.Fprintf(w, "  duplicate %s session %d\n", s.Weekday, s.ID)
				}
				for _, f := range res.Failed {
					fmt.Fprintf(w, "  failed    %s %s\n", f.Weekday, f.Reason)
				}
			})
		},
	}
	cmd.Flags().StringVar(&ns.Discipline, "discipline", "", "discipline taught")
	cmd.Flags().IntVar(&ns.ProfessorID, "professor", 0, "roster entry id")
	cmd.Flags().IntVar(&ns.RoomID, "room", 0, "room id")
	cmd.Flags().StringVar(&ns.Course, "course", "", "course")
	cmd.Flags().StringVar(&ns.Cohort, "cohort", "", "cohort label, e.g. T3 or T3/T4")
	cmd.Flags().StringVar(&ns.Start, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&ns.End, "end", "", "end time HH:MM")
	cmd.Flags().StringSliceVar(&weekdays, "weekdays", nil, "weekday codes, e.g. seg,qua or 1,3")
	return cmd
}

func printSessions(w io.Writer, sessions []schedule.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "no sessions")
		return
	}
	for _, s := range sessions {
		state := ""
		if !s.Active {
			state = " (canceled)"
		}
		fmt.Fprintf(w, "%d\t%s %s-%s\t%s\t%s %s\troom %d\tprofessor %d%s\n",
			s.ID, s.Weekday, s.Start, s.End, s.Discipline, s.Course, s.Cohort, s.RoomID, s.ProfessorID, state)
	}
}

func (cli *commandLine) sessionsCommand() *cobra.Command {
	var filter schedule.QueryFilter
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := cli.admissionSvc.QuerySessions(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), sessions, func(w io.Writer) {
				printSessions(w, sessions)
			})
		},
	}
	cmd.Flags().IntVar(&filter.ProfessorID, "professor", 0, "only sessions of this roster entry")
	cmd.Flags().BoolVar(&filter.ActiveOnly, "active", false, "only active sessions")
	return cmd
}

// setSessionCommand builds "cancel" and "reactivate".
func (cli *commandLine) setSessionCommand(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: use + " a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var sess schedule.Session
			if active {
				sess, err = cli.admissionSvc.Reactivate(cmd.Context(), id)
			} else {
				sess, err = cli.admissionSvc.Cancel(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), sess, func(w io.Writer) {
				printSessions(w, []schedule.Session{sess})
			})
		},
	}
}

func (cli *commandLine) visibleCommand() *cobra.Command {
	var student schedule.Student
	cmd := &cobra.Command{
		Use:   "visible",
		Short: "List the sessions a student of the given course and period sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := cli.admissionSvc.ListVisibleSessions(cmd.Context(), student)
			if err != nil {
				return err
			}
			return cli.output(cmd.OutOrStdout(), sessions, func(w io.Writer) {
				printSessions(w, sessions)
			})
		},
	}
	cmd.Flags().StringVar(&student.Course, "course", "", "course")
	cmd.Flags().IntVar(&student.Period, "period", 0, "cohort period")
	return cmd
}
