package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kistconnect/portal/core/file"
	"github.com/kistconnect/portal/core/user"
	"github.com/kistconnect/portal/tests"
)

func Test_fileApi(t *testing.T) {
	env := setup(t)

	teacher := testutil.CreateUser(t, env.usrRepo, "Mwalimu Otieno", "idp_teacher", "otieno@test.ke", user.RoleTeacher)
	student := testutil.CreateUser(t, env.usrRepo, "Kamau", "idp_student", "kamau@test.ke", user.RoleStudent)

	pdf := []byte(`{"contentType":"application/pdf"}`)

	runHTTPTests(t, env, []httpTest{
		{
			name:     "upload url: student",
			method:   http.MethodPost,
			path:     "/api/files/upload-url",
			body:     pdf,
			token:    env.userToken(t, student),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "upload url: unsupported type",
			method:   http.MethodPost,
			path:     "/api/files/upload-url",
			body:     []byte(`{"contentType":"image/gif"}`),
			token:    env.userToken(t, teacher),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"contentType": "contentType must be one of [application/pdf image/png image/jpeg]",
			}),
		},
		{
			name:     "upload url: no type",
			method:   http.MethodPost,
			path:     "/api/files/upload-url",
			token:    env.userToken(t, teacher),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"contentType": "this field is required"}),
		},
	})

	rec := env.do(http.MethodPost, "/api/files/upload-url", env.userToken(t, teacher), pdf)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var upload file.UploadURL
	unmarshall(t, rec, &upload)
	require.NotEmpty(t, upload.StorageID)
	assert.True(t, strings.HasPrefix(upload.UploadURL, "http://files.test/?"), upload.UploadURL)
	assert.Contains(t, upload.UploadURL, "method=POST")
	assert.Equal(t, upload.StorageID, upload.FormData["key"])
	assert.Equal(t, "application/pdf", upload.FormData["Content-Type"])
	assert.Equal(t, int64(10<<20), upload.MaxSize)

	t.Run("file url", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/files/"+upload.StorageID+"/url", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var u file.FileURL
		unmarshall(t, rec, &u)
		assert.Contains(t, u.URL, "method=GET")

		rec = env.do(http.MethodGet, "/api/files/"+uuid.New().String()+"/url", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	runHTTPTests(t, env, []httpTest{
		{
			name:     "redirect: unknown file",
			method:   http.MethodGet,
			path:     "/api/convex-file/" + uuid.New().String(),
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "File not found"}),
		},
		{
			name:     "redirect: malformed id",
			method:   http.MethodGet,
			path:     "/api/convex-file/lol",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "File not found"}),
		},
	})

	t.Run("redirect", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/convex-file/"+upload.StorageID, "")
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		loc := rec.Header().Get("Location")
		assert.True(t, strings.HasPrefix(loc, "http://files.test/"+upload.StorageID+"?"), loc)
	})

	t.Run("redirect: file uploaded out of band", func(t *testing.T) {
		id := uuid.New().String()
		env.blob.Put(id)
		rec := env.do(http.MethodGet, "/api/convex-file/"+id, "")
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	})
}
