package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/roster"
)

type rosterRepository struct {
	t *tables
}

var _ roster.Repository = (*rosterRepository)(nil)

func (repo *rosterRepository) emailTaken(email string, exclID int) bool {
	for _, e := range repo.t.roster {
		if e.Email == email && e.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *rosterRepository) CreateEntry(ctx context.Context, entry roster.Entry) (roster.Entry, error) {
	if repo.emailTaken(entry.Email, 0) {
		return roster.Entry{}, roster.ErrEmailExists
	}
	now := time.Now().UTC()
	repo.t.pkCount.roster++
	entry.ID = repo.t.pkCount.roster
	entry.CreatedAt = now
	entry.UpdatedAt = now
	repo.t.roster[entry.ID] = entry
	return entry, nil
}

func (repo *rosterRepository) GetEntry(ctx context.Context, id int) (roster.Entry, error) {
	if e, ok := repo.t.roster[id]; ok {
		return e, nil
	}
	return roster.Entry{}, roster.ErrNotFound
}

func (repo *rosterRepository) GetEntryByEmail(ctx context.Context, email string) (roster.Entry, error) {
	for _, e := range repo.t.roster {
		if e.Email == email {
			return e, nil
		}
	}
	return roster.Entry{}, roster.ErrNotFound
}

func (repo *rosterRepository) UpdateEntry(ctx context.Context, entry roster.Entry) (roster.Entry, error) {
	orig, ok := repo.t.roster[entry.ID]
	if !ok {
		return roster.Entry{}, roster.ErrNotFound
	}
	if repo.emailTaken(entry.Email, entry.ID) {
		return roster.Entry{}, roster.ErrEmailExists
	}
	entry.CreatedAt = orig.CreatedAt
	entry.UpdatedAt = time.Now().UTC()
	repo.t.roster[entry.ID] = entry
	return entry, nil
}

func (repo *rosterRepository) DeleteEntry(ctx context.Context, id int) error {
	if _, ok := repo.t.roster[id]; !ok {
		return roster.ErrNotFound
	}
	for _, s := range repo.t.session {
		if s.ProfessorID == id {
			return errors.Errorf("deleting roster entry %d: still referenced by session %d", id, s.ID)
		}
	}
	for k := range repo.t.favorite {
		if k.professorID == id {
			return errors.Errorf("deleting roster entry %d: still referenced by favorites", id)
		}
	}
	delete(repo.t.roster, id)
	return nil
}

func (repo *rosterRepository) QueryEntries(ctx context.Context, filter roster.QueryFilter) ([]roster.Entry, error) {
	entries := make([]roster.Entry, 0, len(repo.t.roster))
	for _, e := range repo.t.roster {
		if filter.Active != nil && e.Active != *filter.Active {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
