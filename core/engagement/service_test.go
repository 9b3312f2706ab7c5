package engagement_test

import (
	"context"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/engagement"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/user"
	inmemdb "github.com/kistconnect/portal/storage/database/inmem"
	"github.com/kistconnect/portal/tests"
)

func TestService_TrackDownload(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	noteRepo := inmemdb.NewNoteRepository(db)
	events := engagement.NewEventsCounter()
	svc := engagement.NewService(inmemdb.NewEngagementRepository(db), events)

	teacher := testutil.CreateUser(t, usrRepo, "Mwalimu", "idp_t", "", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Wambui", "idp_s", "wambui@test.ke", user.RoleStudent)
	n, err := noteRepo.CreateNote(ctx, note.Note{Title: "Atoms", Content: "c", Subject: "Chemistry", TeacherID: teacher.ID, CreatedAt: now})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TrackDownload(ctx, n.ID, student.ID))
	}
	// soft references: an unknown student is still recorded
	require.NoError(t, svc.TrackDownload(ctx, n.ID, "ghost"))

	assert.Equal(t, float64(2), promtest.ToFloat64(events.WithLabelValues(engagement.KindDownload)))
	assert.Equal(t, float64(0), promtest.ToFloat64(events.WithLabelValues(engagement.KindView)))

	downloads, err := svc.NoteDownloads(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, downloads, 2)
	byStudent := map[string]engagement.Download{}
	for _, d := range downloads {
		byStudent[d.StudentID] = d
	}
	assert.Equal(t, "Wambui", byStudent[student.ID].StudentName)
	assert.Equal(t, core.UnixMilli(now), byStudent[student.ID].DownloadedAt)
	assert.Equal(t, user.UnknownName, byStudent["ghost"].StudentName)
	assert.Equal(t, "", byStudent["ghost"].StudentEmail)

	stats, err := svc.TeacherDownloadStats(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, []engagement.DownloadStat{
		{NoteID: n.ID, NoteTitle: "Atoms", NoteSubject: "Chemistry", DownloadCount: 2},
	}, stats)

	stats, err = svc.TeacherDownloadStats(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, stats)
}
