package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/sitesettings"
	"github.com/kistconnect/portal/core/user"
	"github.com/kistconnect/portal/tests"
)

func Test_siteSettingsApi(t *testing.T) {
	env := setup(t)
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	teacher := testutil.CreateUser(t, env.usrRepo, "Mwalimu Otieno", "idp_teacher", "otieno@test.ke", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Kamau", "idp_student", "kamau@test.ke", user.RoleStudent)
	body := []byte(`{"heroTitle":"Welcome to KIST","heroDescription":"Notes and assignments in one place"}`)

	want := sitesettings.SiteSettings{
		HeroTitle:       "Welcome to KIST",
		HeroDescription: "Notes and assignments in one place",
		UpdatedBy:       teacher.ID,
		UpdatedAt:       core.UnixMilli(now),
	}

	runHTTPTests(t, env, []httpTest{
		{
			name:     "never edited",
			method:   http.MethodGet,
			path:     "/api/site-settings",
			wantCode: http.StatusOK,
			wantData: []byte("null"),
		},
		{
			name:     "anonymous update",
			method:   http.MethodPut,
			path:     "/api/site-settings",
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "student update",
			method:   http.MethodPut,
			path:     "/api/site-settings",
			body:     body,
			token:    env.userToken(t, student),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "invalid data",
			method:   http.MethodPut,
			path:     "/api/site-settings",
			body:     []byte(`{"heroTitle":"  "}`),
			token:    env.userToken(t, teacher),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"heroTitle":       "this field is required",
				"heroDescription": "this field is required",
			}),
		},
		{
			name:     "teacher update",
			method:   http.MethodPut,
			path:     "/api/site-settings",
			body:     body,
			token:    env.userToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, want),
		},
	})

	rec := env.do(http.MethodGet, "/api/site-settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got sitesettings.SiteSettings
	unmarshall(t, rec, &got)
	assert.Equal(t, want, got)
}
