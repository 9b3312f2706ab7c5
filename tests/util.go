package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap/zaptest"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/user"
	logsvc "github.com/kistconnect/portal/services/logger"
	"github.com/kistconnect/portal/storage/database"
)

// Config returns a config suited for tests: no debug error bodies, no recovering.
func Config() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Identity.Issuer = ""
	conf.Identity.SigningMethod = "HS256"
	conf.Server.AllowedOrigins = []string{"*"}
	return conf
}

// OpenDB returns a migrated SQLite database living in a temporary directory.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("OpenDB(): %v", err)
	}
	return db
}

func NewLogger(t *testing.T) core.Logger {
	logger := logsvc.NewRollbarLogger(zaptest.NewLogger(t), Config())
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every custom tag of the app registered.
func NewValidator() *validator.Validate {
	validate, _ := NewValidatorWithTranslator()
	return validate
}

// NewValidatorWithTranslator also returns the translator the validation messages were registered on.
func NewValidatorWithTranslator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	note.InitValidators(validate, translator)
	return validate, translator
}

// FreezeTime pins core.NowFunc to now for the duration of the test.
func FreezeTime(t *testing.T, now time.Time) {
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, identityID, email, role string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr, err := repo.CreateUser(context.Background(), user.User{
		IdentityID: identityID,
		Name:       name,
		Email:      email,
		Role:       role,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}
