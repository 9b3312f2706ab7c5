package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	. "github.com/kistconnect/portal/apps/api/echo"
	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/assignment"
	"github.com/kistconnect/portal/core/engagement"
	"github.com/kistconnect/portal/core/file"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/sitesettings"
	"github.com/kistconnect/portal/core/user"
	inmemblob "github.com/kistconnect/portal/storage/blob/inmem"
	inmemdb "github.com/kistconnect/portal/storage/database/inmem"
	"github.com/kistconnect/portal/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	app     *Server
	conf    *core.Config
	db      *inmemdb.DB
	usrRepo user.Repository
	blob    *inmemblob.Store
	events  *prometheus.CounterVec
}

func setup(t *testing.T, configure ...func(conf *core.Config)) *testEnv {
	conf := testutil.Config()
	for _, fn := range configure {
		fn(conf)
	}
	logger := testutil.NewLogger(t)
	validate, translator := testutil.NewValidatorWithTranslator()
	reg := prometheus.NewRegistry()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	blob := inmemblob.New("http://files.test")
	events := engagement.NewEventsCounter()
	require.NoError(t, reg.Register(events))

	// set up server
	app, err := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Translator:     translator,
		Registry:       reg,
		DisableReqLogs: true,
		UserSvc:        user.NewService(usrRepo, logger, validate),
		NoteSvc:        note.NewService(inmemdb.NewNoteRepository(db), validate, conf),
		AssignmentSvc:  assignment.NewService(inmemdb.NewAssignmentRepository(db), validate, conf),
		EngagementSvc:  engagement.NewService(inmemdb.NewEngagementRepository(db), events),
		FileSvc:        file.NewService(blob, validate, conf),
		SettingsSvc:    sitesettings.NewService(inmemdb.NewSiteSettingsRepository(db), validate),
	})
	require.NoError(t, err)

	return &testEnv{app: app, conf: conf, db: db, usrRepo: usrRepo, blob: blob, events: events}
}

// do serves the request and returns the recorder.
func (env *testEnv) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	env.app.ServeHTTP(rec, req)
	return rec
}

// token returns a session token for the identity, as the identity provider would issue it.
func (env *testEnv) token(t *testing.T, identityID, name, email, role string) string {
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   identityID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		Name:  name,
		Email: email,
		Role:  role,
	}
	token, err := GenerateToken(claims, env.conf.Identity.SigningKey)
	if err != nil {
		t.Fatalf("token(): %v", err)
	}
	return token
}

// userToken returns a token matching a stored user.
func (env *testEnv) userToken(t *testing.T, usr user.User) string {
	return env.token(t, usr.IdentityID, usr.Name, usr.Email, usr.Role)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshall(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env *testEnv, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
