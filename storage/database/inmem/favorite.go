package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/favorite"
)

type favoriteRepository struct {
	t *tables
}

var _ favorite.Repository = (*favoriteRepository)(nil)

func (repo *favoriteRepository) AddFavorite(ctx context.Context, link favorite.Link) (favorite.Link, error) {
	if _, ok := repo.t.identity[link.StudentID]; !ok {
		return favorite.Link{}, errors.Errorf("inserting favorite: identity %d does not exist", link.StudentID)
	}
	if _, ok := repo.t.roster[link.ProfessorID]; !ok {
		return favorite.Link{}, errors.Errorf("inserting favorite: roster entry %d does not exist", link.ProfessorID)
	}
	key := favoriteKey{studentID: link.StudentID, professorID: link.ProfessorID}
	if _, ok := repo.t.favorite[key]; ok {
		return favorite.Link{}, favorite.ErrExists
	}
	link.CreatedAt = time.Now().UTC()
	repo.t.favorite[key] = link
	return link, nil
}

func (repo *favoriteRepository) QueryFavorites(ctx context.Context, studentID int) ([]favorite.Link, error) {
	links := make([]favorite.Link, 0)
	for k, l := range repo.t.favorite {
		if k.studentID == studentID {
			links = append(links, l)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ProfessorID < links[j].ProfessorID })
	return links, nil
}

func (repo *favoriteRepository) HasFavorite(ctx context.Context, studentID, professorID int) (bool, error) {
	_, ok := repo.t.favorite[favoriteKey{studentID: studentID, professorID: professorID}]
	return ok, nil
}

func (repo *favoriteRepository) DeleteFavoritesByProfessor(ctx context.Context, professorID int) (int, error) {
	var cnt int
	for k := range repo.t.favorite {
		if k.professorID == professorID {
			delete(repo.t.favorite, k)
			cnt++
		}
	}
	return cnt, nil
}
