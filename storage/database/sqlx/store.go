package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/favorite"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/roster"
	"github.com/skapefps/Unimap-sub001/core/schedule"
	"github.com/skapefps/Unimap-sub001/core/store"
)

// Store runs repositories over a postgres or sqlite3 database.
type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil) // interface compliance check

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx store.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(newTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

type sqlTx struct {
	identities *identityRepository
	roster     *rosterRepository
	sessions   *scheduleRepository
	favorites  *favoriteRepository
}

var _ store.Tx = (*sqlTx)(nil)

func newTx(tx *sqlx.Tx) *sqlTx {
	q := querier{exec: tx}
	// sqlite3 locks the whole database on write
	if tx.DriverName() == "postgres" {
		q.forUpdate = " FOR UPDATE"
	}
	return &sqlTx{
		identities: &identityRepository{q},
		roster:     &rosterRepository{q},
		sessions:   &scheduleRepository{q},
		favorites:  &favoriteRepository{q},
	}
}

func (tx *sqlTx) Identities() identity.Repository { return tx.identities }
func (tx *sqlTx) Roster() roster.Repository       { return tx.roster }
func (tx *sqlTx) Sessions() schedule.Repository   { return tx.sessions }
func (tx *sqlTx) Favorites() favorite.Repository  { return tx.favorites }

// querier binds "?" queries to the driver's placeholder style.
type querier struct {
	exec      sqlx.ExtContext
	forUpdate string
}

func (q querier) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, q.exec, dest, q.exec.Rebind(query), args...)
}

func (q querier) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, q.exec, dest, q.exec.Rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id.
func (q querier) insert(ctx context.Context, query string, args ...interface{}) (int, error) {
	var id int
	err := q.exec.QueryRowxContext(ctx, q.exec.Rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

// execAffected returns the number of affected rows.
func (q querier) execAffected(ctx context.Context, query string, args ...interface{}) (int, error) {
	res, err := q.exec.ExecContext(ctx, q.exec.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// where joins conditions with AND, or returns "" when there are none.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func now() time.Time {
	// postgres keeps microseconds
	return time.Now().UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == "23505"
	case sqlite3.Error:
		return e.ExtendedCode == sqlite3.ErrConstraintUnique || e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// trapErr maps "no rows" to notFound and unique violations to conflict. Anything else is wrapped.
func trapErr(err error, notFound, conflict error, msg string) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Cause(err) == sql.ErrNoRows:
		return notFound
	case conflict != nil && isUniqueViolation(err):
		return conflict
	}
	return errors.Wrap(err, msg)
}
