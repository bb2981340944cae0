package favorite

import (
	"context"
	"time"

	"github.com/skapefps/Unimap-sub001/core"
)

var ErrExists = core.NewConflictError("professor is already a favorite")

// Link marks a roster entry (ProfessorID) as a favorite of a student identity.
type Link struct {
	StudentID   int       `json:"student_id"`
	ProfessorID int       `json:"professor_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Repository interface {
	// AddFavorite fails with ErrExists when the pair is already linked.
	AddFavorite(ctx context.Context, link Link) (Link, error)
	QueryFavorites(ctx context.Context, studentID int) ([]Link, error)
	HasFavorite(ctx context.Context, studentID, professorID int) (bool, error)
	DeleteFavoritesByProfessor(ctx context.Context, professorID int) (int, error)
}
