package assignment

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kistconnect/portal/core"
)

const day = 24 * time.Hour

type Assignment struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DueDate     string      `json:"dueDate"` // YYYY-MM-DD
	Subject     string      `json:"subject"`
	Link        null.String `json:"link"`
	TeacherID   string      `json:"teacherId"`
	TeacherName string      `json:"teacherName"`
	CreatedAt   time.Time   `json:"createdAt"` // UTC

	// computed at read time
	IsOverdue bool `json:"isOverdue"`
	DaysLeft  int  `json:"daysLeft"`
}

// annotate sets the fields that depend on the current time.
func (a *Assignment) annotate(now time.Time) {
	a.IsOverdue = IsOverdue(a.DueDate, now)
	a.DaysLeft = DaysLeft(a.DueDate, now)
}

// dueTime is the start (UTC midnight) of the due date.
func dueTime(dueDate string) (time.Time, bool) {
	t, err := time.Parse(core.DateLayout, dueDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsOverdue reports whether the due date has passed at now.
// Malformed dates are never overdue.
func IsOverdue(dueDate string, now time.Time) bool {
	due, ok := dueTime(dueDate)
	if !ok {
		return false
	}
	return due.Before(now)
}

// DaysLeft is the number of started days until the due date, negative once it has passed.
func DaysLeft(dueDate string, now time.Time) int {
	due, ok := dueTime(dueDate)
	if !ok {
		return 0
	}
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"dueDate" validate:"required,isodate"`
	Subject     string `json:"subject" validate:"required"`
	Link        string `json:"link" validate:"omitempty,url"`
	TeacherID   string `json:"-"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.DueDate = core.CleanString(na.DueDate)
	na.Subject = core.CleanString(na.Subject)
	na.Link = core.CleanString(na.Link)
	return validate.Struct(na)
}

type QueryFilter struct {
	TeacherID string
	Limit     int // 0 means no limit
}
