package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	echoapi "github.com/kistconnect/portal/apps/api/echo"
	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/assignment"
	"github.com/kistconnect/portal/core/engagement"
	"github.com/kistconnect/portal/core/file"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/sitesettings"
	"github.com/kistconnect/portal/core/user"
	logsvc "github.com/kistconnect/portal/services/logger"
	minioblob "github.com/kistconnect/portal/storage/blob/minio"
	"github.com/kistconnect/portal/storage/database"
	sqlxrepos "github.com/kistconnect/portal/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewZap("API", conf), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewZap("DB", conf), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, sqlx.ExtContext) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newBlobStore(conf *core.Config, logger core.Logger) core.BlobStore {
	store, err := minioblob.New(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}
	return store
}

func newRegistry() (*prometheus.Registry, prometheus.Registerer, prometheus.Gatherer) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return reg, reg, reg
}

func newEventsCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	events := engagement.NewEventsCounter()
	if err := reg.Register(events); err != nil {
		return nil, errors.Wrap(err, "registering engagement metrics")
	}
	return events, nil
}

type serverParams struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	Translator    ut.Translator
	Registry      prometheus.Registerer
	UserSvc       *user.Service
	NoteSvc       *note.Service
	AssignmentSvc *assignment.Service
	EngagementSvc *engagement.Service
	FileSvc       *file.Service
	SettingsSvc   *sitesettings.Service
}

func newServer(p serverParams) (*echoapi.Server, error) {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Translator:    p.Translator,
		Registry:      p.Registry,
		UserSvc:       p.UserSvc,
		NoteSvc:       p.NoteSvc,
		AssignmentSvc: p.AssignmentSvc,
		EngagementSvc: p.EngagementSvc,
		FileSvc:       p.FileSvc,
		SettingsSvc:   p.SettingsSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newBlobStore))
	must(c.Provide(newRegistry))
	must(c.Provide(newEventsCounter))

	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewNoteRepository, dig.As(new(note.Repository))))
	must(c.Provide(sqlxrepos.NewAssignmentRepository, dig.As(new(assignment.Repository))))
	must(c.Provide(sqlxrepos.NewEngagementRepository, dig.As(new(engagement.Repository))))
	must(c.Provide(sqlxrepos.NewSiteSettingsRepository, dig.As(new(sitesettings.Repository))))

	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))

	must(c.Provide(user.NewService))
	must(c.Provide(note.NewService))
	must(c.Provide(assignment.NewService))
	must(c.Provide(engagement.NewService))
	must(c.Provide(file.NewService))
	must(c.Provide(sitesettings.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
