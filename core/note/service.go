package note

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("note not found")
	ErrNotOwner = errors.New("only the teacher who created this note can delete it")
)

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		// QueryNotes returns notes newest first, with TeacherName set (user.UnknownName if the teacher is gone).
		QueryNotes(ctx context.Context, filter QueryFilter) ([]Note, error)
		GetNote(ctx context.Context, id string) (Note, error)
		// DeleteNote returns ErrNotFound when no note has that id.
		DeleteNote(ctx context.Context, id string) error
	}

	Service struct {
		repo             Repository
		validate         *validator.Validate
		enforceOwnership bool
	}
)

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	return &Service{
		repo:             repo,
		validate:         validate,
		enforceOwnership: conf.Portal.EnforceOwnership,
	}
}

// Create validates nn and stores a note owned by teacher.
func (svc *Service) Create(ctx context.Context, nn NewNote, teacher user.User) (Note, error) {
	nn.TeacherID = teacher.ID
	if err := nn.Validate(svc.validate); err != nil {
		return Note{}, err
	}

	n, err := svc.repo.CreateNote(ctx, Note{
		Title:         nn.Title,
		Content:       nn.Content,
		FileURL:       null.NewString(nn.FileURL, nn.FileURL != ""),
		FileStorageID: null.NewString(nn.FileStorageID, nn.FileStorageID != ""),
		Subject:       nn.Subject,
		TeacherID:     nn.TeacherID,
		CreatedAt:     core.NowFunc().UTC(),
	})
	if err != nil {
		return Note{}, errors.Wrap(err, "creating note")
	}
	n.TeacherName = teacher.Name
	return n, nil
}

// Query lists every note, newest first, up to params.Limit of them.
func (svc *Service) Query(ctx context.Context, params core.ListParams) ([]Note, error) {
	if err := svc.validate.Struct(params); err != nil {
		return nil, err
	}
	return svc.repo.QueryNotes(ctx, QueryFilter{Limit: params.Limit})
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Note, error) {
	return svc.repo.QueryNotes(ctx, QueryFilter{TeacherID: teacherID})
}

func (svc *Service) Get(ctx context.Context, id string) (Note, error) {
	return svc.repo.GetNote(ctx, id)
}

// Delete removes the note. When ownership is enforced, only its teacher may do so.
func (svc *Service) Delete(ctx context.Context, id string, requester user.User) error {
	if svc.enforceOwnership {
		n, err := svc.repo.GetNote(ctx, id)
		if err != nil {
			return err
		}
		if n.TeacherID != requester.ID {
			return ErrNotOwner
		}
	}
	return svc.repo.DeleteNote(ctx, id)
}
