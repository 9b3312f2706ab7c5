package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/user"
	inmemdb "github.com/kistconnect/portal/storage/database/inmem"
	"github.com/kistconnect/portal/tests"
)

// racingRepository creates the user behind the caller's back on the first CreateUser.
type racingRepository struct {
	user.Repository
	raced bool
}

func (repo *racingRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !repo.raced {
		repo.raced = true
		if _, err := repo.Repository.CreateUser(ctx, usr); err != nil {
			return user.User{}, err
		}
		return user.User{}, user.ErrIdentityExists
	}
	return repo.Repository.CreateUser(ctx, usr)
}

// brokenRepository fails every call.
type brokenRepository struct {
	user.Repository
}

var errBroken = errors.New("db is down")

func (brokenRepository) GetUserByIdentityID(context.Context, string) (user.User, error) {
	return user.User{}, errBroken
}

func setup(t *testing.T, repos ...user.Repository) (*user.Service, user.Repository) {
	var repo user.Repository = inmemdb.NewUserRepository(inmemdb.Open())
	if len(repos) > 0 {
		repo = repos[0]
	}
	return user.NewService(repo, testutil.NewLogger(t), testutil.NewValidator()), repo
}

func TestService_Reconcile(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	t.Run("no identity", func(t *testing.T) {
		svc, _ := setup(t)
		assert.Equal(t, user.ReconcileNone, svc.Reconcile(ctx, user.Profile{Role: user.RoleStudent}))
	})

	t.Run("no stored user and no role", func(t *testing.T) {
		svc, repo := setup(t)
		assert.Equal(t, user.ReconcileNone, svc.Reconcile(ctx, user.Profile{IdentityID: "idp_1", Name: "Juma"}))
		_, err := repo.GetUserByIdentityID(ctx, "idp_1")
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})

	t.Run("no stored user and an invalid role", func(t *testing.T) {
		svc, _ := setup(t)
		assert.Equal(t, user.ReconcileNone, svc.Reconcile(ctx, user.Profile{IdentityID: "idp_1", Role: "admin"}))
	})

	t.Run("creates from the role claim", func(t *testing.T) {
		svc, repo := setup(t)
		res := svc.Reconcile(ctx, user.Profile{IdentityID: "idp_1", Email: "juma@test.ke", Role: user.RoleStudent})
		require.Equal(t, user.ReconcileCreated, res)

		usr, err := repo.GetUserByIdentityID(ctx, "idp_1")
		require.NoError(t, err)
		assert.Equal(t, user.UnknownName, usr.Name)
		assert.Equal(t, "juma@test.ke", usr.Email)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.Equal(t, now, usr.CreatedAt)
	})

	t.Run("patches changed fields only", func(t *testing.T) {
		svc, repo := setup(t)
		stored := testutil.CreateUser(t, repo, "Juma", "idp_1", "juma@test.ke", user.RoleStudent, now.Add(-time.Hour))

		res := svc.Reconcile(ctx, user.Profile{
			IdentityID: "idp_1",
			Name:       "Juma Hamisi",
			ImageURL:   "https://img.test/juma.png",
			Role:       user.RoleTeacher,
		})
		require.Equal(t, user.ReconcileUpdated, res)

		usr, err := repo.GetUserByIdentityID(ctx, "idp_1")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, usr.ID)
		assert.Equal(t, "Juma Hamisi", usr.Name)
		assert.Equal(t, "juma@test.ke", usr.Email)
		assert.Equal(t, "https://img.test/juma.png", usr.ImageURL)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.Equal(t, now, usr.UpdatedAt)
	})

	t.Run("nothing changed", func(t *testing.T) {
		svc, repo := setup(t)
		testutil.CreateUser(t, repo, "Juma", "idp_1", "juma@test.ke", user.RoleStudent)
		res := svc.Reconcile(ctx, user.Profile{IdentityID: "idp_1", Name: "Juma", Email: "juma@test.ke"})
		assert.Equal(t, user.ReconcileNone, res)
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, _ := setup(t, brokenRepository{})
		res := svc.Reconcile(ctx, user.Profile{IdentityID: "idp_1", Role: user.RoleStudent})
		assert.Equal(t, user.ReconcileNone, res)
	})
}

func TestService_SyncManually(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		stored   *user.User
		sync     user.ManualSync
		repo     user.Repository
		wantRes  user.SyncResult
		wantName string
	}{
		{
			name:    "invalid role",
			sync:    user.ManualSync{IdentityID: "idp_1", Role: "principal"},
			wantRes: user.SyncResult{Message: "Please select a valid role."},
		},
		{
			name:    "no identity",
			sync:    user.ManualSync{Role: user.RoleTeacher},
			wantRes: user.SyncResult{Message: "Error syncing user. Please try again."},
		},
		{
			name:    "repository failure",
			sync:    user.ManualSync{IdentityID: "idp_1", Role: user.RoleTeacher},
			repo:    brokenRepository{},
			wantRes: user.SyncResult{Message: "Error syncing user. Please try again."},
		},
		{
			name:     "new teacher",
			sync:     user.ManualSync{IdentityID: "idp_1", Name: " Neema ", Role: "Teacher"},
			wantRes:  user.SyncResult{Success: true, Message: "User synced successfully", Redirect: "/teacher"},
			wantName: "Neema",
		},
		{
			name:     "name falls back to the email",
			sync:     user.ManualSync{IdentityID: "idp_1", Email: "neema@test.ke", Role: user.RoleStudent},
			wantRes:  user.SyncResult{Success: true, Message: "User synced successfully", Redirect: "/student"},
			wantName: "neema@test.ke",
		},
		{
			name:     "generic name",
			sync:     user.ManualSync{IdentityID: "idp_1", Role: user.RoleStudent},
			wantRes:  user.SyncResult{Success: true, Message: "User synced successfully", Redirect: "/student"},
			wantName: "User",
		},
		{
			name:     "existing user",
			stored:   &user.User{Name: "Neema", IdentityID: "idp_1", Role: user.RoleStudent},
			sync:     user.ManualSync{IdentityID: "idp_1", Name: "Neema M.", Role: user.RoleTeacher},
			wantRes:  user.SyncResult{Success: true, Message: "Profile updated successfully", Redirect: "/teacher"},
			wantName: "Neema M.",
		},
		{
			name:     "created concurrently",
			sync:     user.ManualSync{IdentityID: "idp_1", Name: "Neema", Role: user.RoleTeacher},
			repo:     &racingRepository{Repository: inmemdb.NewUserRepository(inmemdb.Open())},
			wantRes:  user.SyncResult{Success: true, Message: "Profile updated successfully", Redirect: "/teacher"},
			wantName: "Neema",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var repos []user.Repository
			if tt.repo != nil {
				repos = append(repos, tt.repo)
			}
			svc, repo := setup(t, repos...)
			if tt.stored != nil {
				testutil.CreateUser(t, repo, tt.stored.Name, tt.stored.IdentityID, tt.stored.Email, tt.stored.Role)
			}

			res := svc.SyncManually(ctx, tt.sync)
			if tt.wantRes.Success {
				usr, err := repo.GetUserByIdentityID(ctx, tt.sync.IdentityID)
				require.NoError(t, err)
				tt.wantRes.UserID = usr.ID
				assert.Equal(t, tt.wantName, usr.Name)
				assert.Equal(t, core.CleanString(tt.sync.Role, true), usr.Role)
			}
			assert.Equal(t, tt.wantRes, res)
		})
	}
}

func TestService_Store(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)

	_, err := svc.Store(ctx, user.NewUser{IdentityID: "idp_1", Email: "nope", Role: "admin"})
	var vErrs validator.ValidationErrors
	require.True(t, errors.As(err, &vErrs), "err = %v", err)
	assert.Len(t, vErrs, 3)

	id, err := svc.Store(ctx, user.NewUser{IdentityID: "idp_1", Name: "Zawadi", Email: "Zawadi@Test.ke", Role: user.RoleStudent})
	require.NoError(t, err)

	again, err := svc.Store(ctx, user.NewUser{IdentityID: "idp_1", Name: "Zawadi", Role: user.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	usr, err := repo.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", usr.Email)
	assert.Equal(t, user.RoleTeacher, usr.Role)
}

func TestService_SetRole(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	testutil.CreateUser(t, repo, "Imani", "idp_1", "", user.RoleStudent)

	_, err := svc.SetRole(ctx, "idp_1", "janitor")
	_, isValidation := errors.Cause(err).(*core.ValidationError)
	assert.True(t, isValidation, "err = %v", err)

	_, err = svc.SetRole(ctx, "idp_404", user.RoleTeacher)
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))

	usr, err := svc.SetRole(ctx, " idp_1 ", " TEACHER ")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)
	assert.True(t, usr.IsTeacher())
	assert.Equal(t, "/teacher", usr.DashboardPath())
}
