package assignment

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
	ErrNotFound = errors.New("assignment not found")
	ErrNotOwner = errors.New("only the teacher who created this assignment can delete it")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// QueryAssignments returns assignments newest first, with TeacherName set.
		QueryAssignments(ctx context.Context, filter QueryFilter) ([]Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		// DeleteAssignment returns ErrNotFound when no assignment has that id.
		DeleteAssignment(ctx context.Context, id string) error
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

// Create validates na and stores an assignment owned by teacher.
func (svc *Service) Create(ctx context.Context, na NewAssignment, teacher user.User) (Assignment, error) {
	na.TeacherID = teacher.ID
	if err := na.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}

	now := core.NowFunc()
	a, err := svc.repo.CreateAssignment(ctx, Assignment{
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		Subject:     na.Subject,
		Link:        null.NewString(na.Link, na.Link != ""),
		TeacherID:   na.TeacherID,
		CreatedAt:   now.UTC(),
	})
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	a.TeacherName = teacher.Name
	a.annotate(now)
	return a, nil
}

// Query lists every assignment, newest first, up to params.Limit of them.
func (svc *Service) Query(ctx context.Context, params core.ListParams) ([]Assignment, error) {
	if err := svc.validate.Struct(params); err != nil {
		return nil, err
	}
	return svc.query(ctx, QueryFilter{Limit: params.Limit})
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Assignment, error) {
	return svc.query(ctx, QueryFilter{TeacherID: teacherID})
}

func (svc *Service) query(ctx context.Context, filter QueryFilter) ([]Assignment, error) {
	assignments, err := svc.repo.QueryAssignments(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := core.NowFunc()
	for i := range assignments {
		assignments[i].annotate(now)
	}
	return assignments, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	a.annotate(core.NowFunc())
	return a, nil
}

// Delete removes the assignment. When ownership is enforced, only its teacher may do so.
func (svc *Service) Delete(ctx context.Context, id string, requester user.User) error {
	if svc.enforceOwnership {
		a, err := svc.repo.GetAssignment(ctx, id)
		if err != nil {
			return err
		}
		if a.TeacherID != requester.ID {
			return ErrNotOwner
		}
	}
	return svc.repo.DeleteAssignment(ctx, id)
}
