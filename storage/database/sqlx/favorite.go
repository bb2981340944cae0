package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/favorite"
)

type favoriteRow struct {
	StudentID   int       `db:"student_id"`
	ProfessorID int       `db:"professor_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type favoriteRepository struct {
	querier
}

var _ favorite.Repository = (*favoriteRepository)(nil)

func (repo *favoriteRepository) AddFavorite(ctx context.Context, link favorite.Link) (favorite.Link, error) {
	link.CreatedAt = now()
	_, err := repo.execAffected(ctx,
		"INSERT INTO favorites (student_id, professor_id, created_at) VALUES (?, ?, ?)",
		link.StudentID, link.ProfessorID, link.CreatedAt,
	)
	if err != nil {
		return favorite.Link{}, trapErr(err, nil, favorite.ErrExists, "inserting favorite")
	}
	return link, nil
}

func (repo *favoriteRepository) QueryFavorites(ctx context.Context, studentID int) ([]favorite.Link, error) {
	var rows []favoriteRow
	err := repo.selectAll(ctx, &rows,
		"SELECT student_id, professor_id, created_at FROM favorites WHERE student_id = ? ORDER BY professor_id", studentID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting favorites")
	}
	links := make([]favorite.Link, 0, len(rows))
	for _, r := range rows {
		links = append(links, favorite.Link{StudentID: r.StudentID, ProfessorID: r.ProfessorID, CreatedAt: r.CreatedAt.UTC()})
	}
	return links, nil
}

func (repo *favoriteRepository) HasFavorite(ctx context.Context, studentID, professorID int) (bool, error) {
	var cnt int
	err := repo.get(ctx, &cnt, "SELECT COUNT(*) FROM favorites WHERE student_id = ? AND professor_id = ?", studentID, professorID)
	if err != nil {
		return false, errors.Wrap(err, "counting favorites")
	}
	return cnt > 0, nil
}

func (repo *favoriteRepository) DeleteFavoritesByProfessor(ctx context.Context, professorID int) (int, error) {
	n, err := repo.execAffected(ctx, "DELETE FROM favorites WHERE professor_id = ?", professorID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting favorites")
	}
	return n, nil
}
