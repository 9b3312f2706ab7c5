package user

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrIdentityExists = errors.New("a user with this identity already exists")

	msgSyncCreated = "User synced successfully"
	msgSyncUpdated = "Profile updated successfully"
	msgSyncInvalid = "Please select a valid role."
	msgSyncFailed  = "Error syncing user. Please try again."
)

type (
	Repository interface {
		// GetUserByIdentityID returns ErrNotFound when no user carries that identity.
		GetUserByIdentityID(ctx context.Context, identityID string) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		// CreateUser returns ErrIdentityExists when the identity is already stored.
		CreateUser(ctx context.Context, usr User) (User, error)
		// UpdateUser saves name, email, image, role and updatedAt of the user with usr.ID.
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo     Repository
		logger   core.Logger
		validate *validator.Validate
	}
)

func NewService(repo Repository, logger core.Logger, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, logger: logger, validate: validate}
}

func (svc *Service) GetByIdentityID(ctx context.Context, identityID string) (User, error) {
	return svc.repo.GetUserByIdentityID(ctx, core.CleanString(identityID))
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// Store creates the user or overwrites the stored one (role included) and returns its ID.
func (svc *Service) Store(ctx context.Context, nu NewUser) (string, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return "", err
	}

	usr, _, err := svc.upsert(ctx, nu.IdentityID, nu.Name, nu.Email, nu.ImageURL, nu.Role)
	if err != nil {
		return "", err
	}
	return usr.ID, nil
}

// upsert reports through its second return value whether the user already existed.
func (svc *Service) upsert(ctx context.Context, identityID, name, email, imageURL, role string) (User, bool, error) {
	update := func(usr User) (User, error) {
		usr.Name = name
		usr.Email = email
		usr.ImageURL = imageURL
		usr.Role = role
		usr.UpdatedAt = core.NowFunc().UTC()
		usr, err := svc.repo.UpdateUser(ctx, usr)
		return usr, errors.Wrap(err, "updating user")
	}

	usr, err := svc.repo.GetUserByIdentityID(ctx, identityID)
	switch {
	case err == nil:
		usr, err = update(usr)
		return usr, true, err
	case errors.Cause(err) != ErrNotFound:
		return User{}, false, errors.Wrap(err, "finding user by identity")
	}

	now := core.NowFunc().UTC()
	usr, err = svc.repo.CreateUser(ctx, User{
		IdentityID: identityID,
		Name:       name,
		Email:      email,
		ImageURL:   imageURL,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if errors.Cause(err) == ErrIdentityExists {
		// created by a concurrent request in the meantime
		if usr, err = svc.repo.GetUserByIdentityID(ctx, identityID); err != nil {
			return User{}, false, errors.Wrap(err, "finding user by identity")
		}
		usr, err = update(usr)
		return usr, true, err
	}
	return usr, false, errors.Wrap(err, "creating user")
}

// SyncManually stores the role the user picked together with their profile.
// Failures are reported in the result, never as an error.
func (svc *Service) SyncManually(ctx context.Context, ms ManualSync) SyncResult {
	if err := ms.Validate(svc.validate); err != nil {
		return SyncResult{Message: msgSyncInvalid}
	}

	identityID := core.CleanString(ms.IdentityID)
	if identityID == "" {
		return SyncResult{Message: msgSyncFailed}
	}

	usr, existed, err := svc.upsert(
		ctx, identityID, ms.displayName(), core.CleanString(ms.Email), core.CleanString(ms.ImageURL), ms.Role,
	)
	if err != nil {
		svc.logger.Error("syncing user manually", err, map[string]interface{}{"identityId": identityID})
		return SyncResult{Message: msgSyncFailed}
	}

	msg := msgSyncCreated
	if existed {
		msg = msgSyncUpdated
	}
	return SyncResult{Success: true, Message: msg, UserID: usr.ID, Redirect: usr.DashboardPath()}
}

// Reconcile brings the stored user in line with the identity provider's profile.
//
// Without a stored record, a user is only created when the profile carries a valid role claim.
// With one, changed non-blank fields are patched and the stored role is kept.
// Errors are logged and never returned.
func (svc *Service) Reconcile(ctx context.Context, p Profile) ReconcileResult {
	if p.IdentityID == "" {
		return ReconcileNone
	}

	usr, err := svc.repo.GetUserByIdentityID(ctx, p.IdentityID)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			svc.logger.Error("reconciling user: finding user by identity", err)
			return ReconcileNone
		}
		return svc.createFromProfile(ctx, p)
	}

	if !usr.applyProfile(p) {
		return ReconcileNone
	}
	usr.UpdatedAt = core.NowFunc().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		svc.logger.Error("reconciling user: updating user", err, usr)
		return ReconcileNone
	}
	svc.logger.Debug(fmt.Sprintf("reconciled user %s", usr.ID), usr)
	return ReconcileUpdated
}

func (svc *Service) createFromProfile(ctx context.Context, p Profile) ReconcileResult {
	if !IsValidRole(p.Role) {
		return ReconcileNone
	}

	name := p.Name
	if name == "" {
		name = UnknownName
	}
	now := core.NowFunc().UTC()
	usr, err := svc.repo.CreateUser(ctx, User{
		IdentityID: p.IdentityID,
		Name:       name,
		Email:      p.Email,
		ImageURL:   p.ImageURL,
		Role:       p.Role,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Cause(err) != ErrIdentityExists {
			svc.logger.Error("reconciling user: creating user", err)
		}
		return ReconcileNone
	}
	svc.logger.Info(fmt.Sprintf("created user %s from identity profile", usr.ID), usr)
	return ReconcileCreated
}

// SetRole overrides the stored role of a user.
func (svc *Service) SetRole(ctx context.Context, identityID, role string) (User, error) {
	role = core.CleanString(role, true /* lower */)
	if !IsValidRole(role) {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "role", Error: roleText})
	}

	usr, err := svc.GetByIdentityID(ctx, identityID)
	if err != nil {
		return User{}, err
	}
	usr.Role = role
	usr.UpdatedAt = core.NowFunc().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user role")
}
