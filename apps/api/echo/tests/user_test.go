package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/kistconnect/portal/apps/api/echo"
	"github.com/kistconnect/portal/core/user"
	"github.com/kistconnect/portal/tests"
)

func Test_home(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to KistConnect API!", rec.Body.String())
}

func Test_userApi_retrieveMe(t *testing.T) {
	env := setup(t)

	usr := testutil.CreateUser(t, env.usrRepo, "Wanjiru", "idp_wanjiru", "wanjiru@test.ke", user.RoleStudent)

	runHTTPTests(t, env, []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/api/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "bad token",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    "lol",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name:     "no stored user, no role claim",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    env.token(t, "idp_ghost", "Ghost", "ghost@test.ke", ""),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: user.ErrNotFound.Error()}),
		},
		{
			name:     "stored user",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    env.userToken(t, usr),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, usr),
		},
		{
			name:     "by identity",
			method:   http.MethodGet,
			path:     "/api/users/" + usr.IdentityID,
			token:    env.userToken(t, usr),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, usr),
		},
	})
}

func Test_reconcile(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	t.Run("creates the user from a role claim", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/users/me", env.token(t, "idp_new", "", "New@Test.ke", "teacher"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got user.User
		unmarshall(t, rec, &got)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, user.UnknownName, got.Name)
		assert.Equal(t, "new@test.ke", got.Email)
		assert.Equal(t, user.RoleTeacher, got.Role)
	})

	t.Run("patches the profile and keeps the role", func(t *testing.T) {
		usr := testutil.CreateUser(t, env.usrRepo, "Old Name", "idp_patch", "old@test.ke", user.RoleStudent)

		rec := env.do(http.MethodGet, "/api/users/me", env.token(t, usr.IdentityID, "New Name", "", "teacher"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		stored, err := env.usrRepo.GetUserByIdentityID(ctx, usr.IdentityID)
		require.NoError(t, err)
		assert.Equal(t, "New Name", stored.Name)
		assert.Equal(t, "old@test.ke", stored.Email)
		assert.Equal(t, user.RoleStudent, stored.Role)
	})
}

func Test_userApi_sync(t *testing.T) {
	env := setup(t)
	token := env.token(t, "idp_sync", "Baraka", "baraka@test.ke", "")

	rec := env.do(http.MethodPost, "/api/users/sync", token, []byte(`{"role":"admin"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var res user.SyncResult
	unmarshall(t, rec, &res)
	assert.Equal(t, user.SyncResult{Success: false, Message: "Please select a valid role."}, res)

	rec = env.do(http.MethodPost, "/api/users/sync", token, []byte(`{"role":"teacher"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	res = user.SyncResult{}
	unmarshall(t, rec, &res)
	assert.True(t, res.Success)
	assert.Equal(t, "User synced successfully", res.Message)
	assert.Equal(t, "/teacher", res.Redirect)
	assert.NotEmpty(t, res.UserID)

	rec = env.do(http.MethodPost, "/api/users/sync", token, []byte(`{"role":"student"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	second := user.SyncResult{}
	unmarshall(t, rec, &second)
	assert.Equal(t, user.SyncResult{
		Success:  true,
		Message:  "Profile updated successfully",
		UserID:   res.UserID,
		Redirect: "/student",
	}, second)

	stored, err := env.usrRepo.GetUserByIdentityID(context.Background(), "idp_sync")
	require.NoError(t, err)
	assert.Equal(t, "Baraka", stored.Name)
	assert.Equal(t, user.RoleStudent, stored.Role)
}

func Test_userApi_store(t *testing.T) {
	env := setup(t)
	token := env.token(t, "idp_store", "Achieng", "achieng@test.ke", "")

	runHTTPTests(t, env, []httpTest{
		{
			name:     "someone else",
			method:   http.MethodPost,
			path:     "/api/users",
			body:     []byte(`{"identityId":"idp_other","name":"Other","role":"student"}`),
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "invalid data",
			method:   http.MethodPost,
			path:     "/api/users",
			body:     []byte(`{"email":"lol","role":"admin"}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"name":  "this field is required",
				"email": "email must be a valid email address",
				"role":  "role must be either teacher or student",
			}),
		},
	})

	rec := env.do(http.MethodPost, "/api/users", token, []byte(`{"name":"Achieng","role":"student"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res echoapi.StoreUserResponse
	unmarshall(t, rec, &res)

	stored, err := env.usrRepo.GetUserByIdentityID(context.Background(), "idp_store")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, res.UserID)
	assert.Equal(t, user.RoleStudent, stored.Role)
}
