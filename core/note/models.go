package note

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kistconnect/portal/core"
)

type Note struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	FileURL       null.String `json:"fileUrl"`
	FileStorageID null.String `json:"fileStorageId"`
	Subject       string      `json:"subject"`
	TeacherID     string      `json:"teacherId"`
	TeacherName   string      `json:"teacherName"`
	CreatedAt     time.Time   `json:"createdAt"` // UTC
}

// HasFile reports whether the note has an attachment of either kind.
func (n Note) HasFile() bool {
	return n.FileURL.Valid || n.FileStorageID.Valid
}

// NewNote contains information needed to create a new Note.
type NewNote struct {
	Title         string `json:"title" validate:"required"`
	Content       string `json:"content" validate:"required"`
	FileURL       string `json:"fileUrl" validate:"omitempty,url"`
	FileStorageID string `json:"fileStorageId" validate:"omitempty,uuid"`
	Subject       string `json:"subject" validate:"required"`
	TeacherID     string `json:"-"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Content = core.CleanString(nn.Content)
	nn.FileURL = core.CleanString(nn.FileURL)
	nn.FileStorageID = core.CleanString(nn.FileStorageID)
	nn.Subject = core.CleanString(nn.Subject)
	return validate.Struct(nn)
}

type QueryFilter struct {
	TeacherID string
	Limit     int // 0 means no limit
}
