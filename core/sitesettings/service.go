package sitesettings

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/user"
)

// ErrNotFound is returned by the Repository until the settings are first edited.
var ErrNotFound = errors.New("site settings not found")

// SiteSettings holds the editable home page texts. There is at most one.
type SiteSettings struct {
	HeroTitle       string `json:"heroTitle"`
	HeroDescription string `json:"heroDescription"`
	UpdatedBy       string `json:"updatedBy"`
	UpdatedAt       int64  `json:"updatedAt"` // unix ms
}

type UpdateSettings struct {
	HeroTitle       string `json:"heroTitle" validate:"required"`
	HeroDescription string `json:"heroDescription" validate:"required"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	us.HeroTitle = core.CleanString(us.HeroTitle)
	us.HeroDescription = core.CleanString(us.HeroDescription)
	return validate.Struct(us)
}

type (
	Repository interface {
		GetSettings(ctx context.Context) (SiteSettings, error)
		// SaveSettings creates the settings or overwrites the existing ones.
		SaveSettings(ctx context.Context, s SiteSettings) (SiteSettings, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, validate: validate}
}

// Get returns nil when the settings were never edited.
func (svc *Service) Get(ctx context.Context) (*SiteSettings, error) {
	s, err := svc.repo.GetSettings(ctx)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting site settings")
	}
	return &s, nil
}

func (svc *Service) Update(ctx context.Context, us UpdateSettings, editor user.User) (SiteSettings, error) {
	if err := us.Validate(svc.validate); err != nil {
		return SiteSettings{}, err
	}

	s, err := svc.repo.SaveSettings(ctx, SiteSettings{
		HeroTitle:       us.HeroTitle,
		HeroDescription: us.HeroDescription,
		UpdatedBy:       editor.ID,
		UpdatedAt:       core.UnixMilli(core.NowFunc()),
	})
	return s, errors.Wrap(err, "saving site settings")
}
