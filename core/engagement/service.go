package engagement

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kistconnect/portal/core"
)

type (
	Repository interface {
		// CreateDownload stores d unless the (note, student) pair already has one.
		// It reports whether a new event was stored.
		CreateDownload(ctx context.Context, d Download) (bool, error)
		// QueryNoteDownloads joins every download of the note with the student's name and email.
		QueryNoteDownloads(ctx context.Context, noteID string) ([]Download, error)
		// QueryTeacherDownloadStats counts downloads for every note of the teacher, zero counts included.
		QueryTeacherDownloadStats(ctx context.Context, teacherID string) ([]DownloadStat, error)

		CreateView(ctx context.Context, v View) (bool, error)
		QueryAssignmentViews(ctx context.Context, assignmentID string) ([]View, error)
		QueryTeacherAssignmentStats(ctx context.Context, teacherID string) ([]AssignmentStat, error)
	}

	Service struct {
		repo   Repository
		events *prometheus.CounterVec
	}
)

// NewEventsCounter returns the counter of newly recorded engagement events, by kind.
func NewEventsCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kistconnect",
		Name:      "engagement_events_total",
		Help:      "Number of engagement events recorded, by kind.",
	}, []string{"kind"})
}

func NewService(repo Repository, events *prometheus.CounterVec) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(events, "events"),
	).CheckAndPanic()

	return &Service{repo: repo, events: events}
}

// TrackDownload records the first download of a note by a student. Later calls are no-ops.
func (svc *Service) TrackDownload(ctx context.Context, noteID, studentID string) error {
	created, err := svc.repo.CreateDownload(ctx, Download{
		NoteID:       noteID,
		StudentID:    studentID,
		DownloadedAt: core.UnixMilli(core.NowFunc()),
	})
	if err != nil {
		return errors.Wrap(err, "creating download")
	}
	if created {
		svc.events.WithLabelValues(KindDownload).Inc()
	}
	return nil
}

// TrackAssignmentView records the first view of an assignment by a student. Later calls are no-ops.
func (svc *Service) TrackAssignmentView(ctx context.Context, assignmentID, studentID string) error {
	created, err := svc.repo.CreateView(ctx, View{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		ViewedAt:     core.UnixMilli(core.NowFunc()),
	})
	if err != nil {
		return errors.Wrap(err, "creating assignment view")
	}
	if created {
		svc.events.WithLabelValues(KindView).Inc()
	}
	return nil
}

func (svc *Service) NoteDownloads(ctx context.Context, noteID string) ([]Download, error) {
	return svc.repo.QueryNoteDownloads(ctx, noteID)
}

func (svc *Service) AssignmentViews(ctx context.Context, assignmentID string) ([]View, error) {
	return svc.repo.QueryAssignmentViews(ctx, assignmentID)
}

func (svc *Service) TeacherDownloadStats(ctx context.Context, teacherID string) ([]DownloadStat, error) {
	return svc.repo.QueryTeacherDownloadStats(ctx, teacherID)
}

func (svc *Service) TeacherAssignmentStats(ctx context.Context, teacherID string) ([]AssignmentStat, error) {
	return svc.repo.QueryTeacherAssignmentStats(ctx, teacherID)
}
