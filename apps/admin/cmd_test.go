package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skapefps/Unimap-sub001/core/admission"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
	inmemdb "github.com/skapefps/Unimap-sub001/storage/database/inmem"
	"github.com/skapefps/Unimap-sub001/testutil"
)

func setup(t *testing.T) (*commandLine, *inmemdb.DB) {
	t.Helper()
	db := inmemdb.Open()
	v := testutil.NewValidator()
	logger := testutil.NewLogger()
	return &commandLine{
		conf:         testutil.NewConfig(),
		rosterSvc:    rostersync.NewService(db, v, logger),
		admissionSvc: admission.NewService(db, v, logger),
	}, db
}

func run(cli *commandLine, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand(cli)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if errors.Cause(err) != tt.wantErr {
			t.Errorf("run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("run() unexpected error = %v", err)
	}
}

func Test_commandLine_professorLifecycle(t *testing.T) {
	cli, _ := setup(t)

	admit := func(weekdays string) []string {
		return []string{
			"admit", "--discipline", "Algorithms", "--professor", "1", "--room", "1",
			"--course", "CS", "--cohort", "T3", "--start", "08:00", "--end", "10:00", "--weekdays", weekdays,
		}
	}
	steps := [][]string{
		{"add-identity", "--name", "Root", "--email", "root@x.edu", "--role", "admin"},
		{"add-identity", "--name", "Stu", "--email", "stu@x.edu", "--course", "CS", "--period", "3"},
		{"add-identity", "--name", "Ada Lovelace", "--email", "ada@x.edu", "--role", "professor"},
		{"add-room", "B-101"},
		admit("seg,qua"),
		admit("qua,sex"),
		{"cancel", "3"},
		{"visible", "--course", "CS", "--period", "3"},
		{"change-role", "3", "student"},
		{"audit"},
		{"roster-status", "1", "active"},
		{"change-email", "3", "lovelace@x.edu"},
		{"delete-identity", "3"},
		{"sessions"},
		{"audit"},
	}

	var transcript strings.Builder
	for _, args := range steps {
		out, err := run(cli, args...)
		require.NoError(t, err, "admin %s", strings.Join(args, " "))
		fmt.Fprintf(&transcript, "$ admin %s\n%s", strings.Join(args, " "), out)
	}
	newGoldie(t).Assert(t, "professor_lifecycle", []byte(transcript.String()))
}

func Test_commandLine_jsonFormat(t *testing.T) {
	cli, db := setup(t)
	testutil.CreateIdentity(t, db, "Stu", "stu@x.edu", identity.RoleStudent, "CS", 3)

	out, err := run(cli, "--format", "json", "change-role", "1", "professor")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "change_role_json", []byte(out))
}

func Test_commandLine_errors(t *testing.T) {
	cli, db := setup(t)
	testutil.CreateRosterEntry(t, db, "Ada", "ada@x.edu", true)
	testutil.CreateRoom(t, db, "B-101")

	tests := []cliTest{
		{name: "bad format", args: []string{"--format", "xml", "audit"}, wantErrStr: `invalid format "xml": must be one of text, json`},
		{name: "missing args", args: []string{"change-role", "1"}, wantErrStr: "accepts 2 arg(s), received 1"},
		{name: "bad id", args: []string{"change-role", "abc", "student"}, wantErrStr: `invalid id "abc"`},
		{name: "unknown identity", args: []string{"change-role", "99", "admin"}, wantErr: identity.ErrNotFound},
		{name: "bad status", args: []string{"roster-status", "1", "maybe"}, wantErrStr: `invalid status "maybe": must be active or inactive`},
		{name: "active roster entry", args: []string{"delete-roster", "1"}, wantErrStr: "roster entry 1 is active, deactivate it first"},
		{
			name: "unknown weekday",
			args: []string{
				"admit", "--discipline", "Algorithms", "--professor", "1", "--room", "1",
				"--course", "CS", "--cohort", "T3", "--start", "08:00", "--end", "10:00", "--weekdays", "dom",
			},
			wantErrStr: `weekdays: unknown weekday "dom"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(cli, tt.args...)
			tt.check(t, err)
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	type call struct {
		command, dir string
		args         []string
	}
	var got call
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		got = call{command: command, dir: dir, args: args}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s), only received 0"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}, extra: call{command: "up", dir: "migrations/sqlite3", args: []string{}}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, extra: call{command: "up-to", dir: "migrations/sqlite3", args: []string{"2"}}},
		{name: "status", args: []string{"migrate", "status"}, extra: call{command: "status", dir: "migrations/sqlite3", args: []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = call{}
			_, err := run(cli, tt.args...)
			tt.check(t, err)
			if want, ok := tt.extra.(call); ok {
				assert.Equal(t, want, got)
			}
		})
	}
}
