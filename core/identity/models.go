package identity

import (
	"time"

	"github.com/skapefps/Unimap-sub001/core"
)

// Roles
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
)

var AllRoles = []string{RoleStudent, RoleProfessor, RoleAdmin}

func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is an account. Professors are mirrored by a roster entry with the same email.
type Identity struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Course       string    `json:"course,omitempty"`
	CohortPeriod int       `json:"cohort_period,omitempty"`
	Deleted      bool      `json:"deleted"`
	Version      int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (i *Identity) IsStudent() bool   { return i.Role == RoleStudent }
func (i *Identity) IsProfessor() bool { return i.Role == RoleProfessor }
func (i *Identity) IsAdmin() bool     { return i.Role == RoleAdmin }

// ClearAcademics drops the student-only attributes.
func (i *Identity) ClearAcademics() {
	i.Course = ""
	i.CohortPeriod = 0
}

// NewIdentity contains information needed to register a new Identity.
type NewIdentity struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Role         string `json:"role" validate:"required,role"`
	Course       string `json:"course"`
	CohortPeriod int    `json:"cohort_period" validate:"gte=0"`
}

func (ni *NewIdentity) Validate(v *core.Validator) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Email = core.CleanString(ni.Email) // emails match case-sensitively
	ni.Role = core.CleanString(ni.Role, true /* lower */)
	ni.Course = core.CleanString(ni.Course)
	return v.Struct(ni)
}

type QueryFilter struct {
	Role           string
	IncludeDeleted bool
}
