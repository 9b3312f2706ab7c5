package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kistconnect/portal/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"

	// placeholder used when a user has no name, or a reference points to a missing user
	UnknownName = "Unknown"
)

var Roles = []Role{
	{Name: "Teacher", Value: RoleTeacher},
	{Name: "Student", Value: RoleStudent},
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IsValidRole reports whether role is one of the portal roles.
func IsValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}

type User struct {
	ID         string    `json:"id"`
	IdentityID string    `json:"identityId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ImageURL   string    `json:"imageUrl"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"` // UTC
	UpdatedAt  time.Time `json:"updatedAt"` // UTC
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

func (u User) IsStudent() bool { return u.Role == RoleStudent }

// DashboardPath is where the user lands after choosing a role.
func (u User) DashboardPath() string {
	return dashboardPath(u.Role)
}

func dashboardPath(role string) string {
	if role == RoleTeacher {
		return "/teacher"
	}
	return "/student"
}

// applyProfile copies the non-blank profile fields that differ from the stored ones.
// It reports whether anything changed. The role is never touched.
func (u *User) applyProfile(p Profile) bool {
	var changed bool
	if p.Name != "" && p.Name != u.Name {
		u.Name = p.Name
		changed = true
	}
	if p.ImageURL != "" && p.ImageURL != u.ImageURL {
		u.ImageURL = p.ImageURL
		changed = true
	}
	if p.Email != "" && p.Email != u.Email {
		u.Email = p.Email
		changed = true
	}
	return changed
}

// Profile is the identity provider's view of the signed-in user.
type Profile struct {
	IdentityID string
	Name       string
	Email      string
	ImageURL   string
	Role       string // optional role claim
}

// NewUser contains information needed to store a User.
type NewUser struct {
	IdentityID string `json:"identityId" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	ImageURL   string `json:"imageUrl" validate:"omitempty,url"`
	Role       string `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.IdentityID = core.CleanString(nu.IdentityID)
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.ImageURL = core.CleanString(nu.ImageURL)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}

// ManualSync is an explicit role selection made by the signed-in user.
type ManualSync struct {
	IdentityID string `json:"-"`
	Name       string `json:"-"`
	Email      string `json:"-"`
	ImageURL   string `json:"-"`
	Role       string `json:"role" validate:"required,role"`
}

func (ms *ManualSync) Validate(validate *validator.Validate) error {
	ms.Role = core.CleanString(ms.Role, true /* lower */)
	return validate.Struct(ms)
}

// displayName falls back to the email, then to a generic name.
func (ms ManualSync) displayName() string {
	if name := core.CleanString(ms.Name); name != "" {
		return name
	}
	if email := core.CleanString(ms.Email); email != "" {
		return email
	}
	return "User"
}

type SyncResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	UserID   string `json:"userId,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// ReconcileResult tells what a reconciliation pass did to the stored record.
type ReconcileResult string

const (
	ReconcileNone    ReconcileResult = "none"
	ReconcileCreated ReconcileResult = "created"
	ReconcileUpdated ReconcileResult = "updated"
)
