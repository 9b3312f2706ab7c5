package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kistconnect/portal/core/engagement"
)

type engagementRepository struct {
	exec sqlx.ExtContext
}

var _ engagement.Repository = (*engagementRepository)(nil) // interface compliance check

func NewEngagementRepository(exec sqlx.ExtContext) *engagementRepository {
	return &engagementRepository{exec: exec}
}

// insertOnce runs an INSERT ... ON CONFLICT DO NOTHING and reports whether a row was stored.
func (repo engagementRepository) insertOnce(ctx context.Context, q string, args ...interface{}) (bool, error) {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(q), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (repo engagementRepository) CreateDownload(ctx context.Context, d engagement.Download) (bool, error) {
	created, err := repo.insertOnce(ctx, `
		INSERT INTO downloads (id, note_id, student_id, downloaded_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (note_id, student_id) DO NOTHING`,
		uuid.New().String(), d.NoteID, d.StudentID, d.DownloadedAt,
	)
	return created, wrapErr(err, "inserting download")
}

func (repo engagementRepository) QueryNoteDownloads(ctx context.Context, noteID string) ([]engagement.Download, error) {
	q := repo.exec.Rebind(`
		SELECT d.id, d.note_id, d.student_id, d.downloaded_at,
			COALESCE(u.name, '') AS student_name, COALESCE(u.email, '') AS student_email
		FROM downloads d
		LEFT JOIN users u ON u.id = d.student_id
		WHERE d.note_id = ?
		ORDER BY d.downloaded_at`)

	var rows []struct {
		ID           string `db:"id"`
		NoteID       string `db:"note_id"`
		StudentID    string `db:"student_id"`
		DownloadedAt int64  `db:"downloaded_at"`
		StudentName  string `db:"student_name"`
		StudentEmail string `db:"student_email"`
	}
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, noteID); err != nil {
		return nil, wrapErr(err, "selecting downloads")
	}

	downloads := make([]engagement.Download, 0, len(rows))
	for _, r := range rows {
		downloads = append(downloads, engagement.Download{
			ID:           r.ID,
			NoteID:       r.NoteID,
			StudentID:    r.StudentID,
			DownloadedAt: r.DownloadedAt,
			StudentName:  displayName(r.StudentName),
			StudentEmail: r.StudentEmail,
		})
	}
	return downloads, nil
}

func (repo engagementRepository) QueryTeacherDownloadStats(ctx context.Context, teacherID string) ([]engagement.DownloadStat, error) {
	q := repo.exec.Rebind(`
		SELECT n.id AS note_id, n.title AS note_title, n.subject AS note_subject, COUNT(d.id) AS download_count
		FROM notes n
		LEFT JOIN downloads d ON d.note_id = n.id
		WHERE n.teacher_id = ?
		GROUP BY n.id, n.title, n.subject, n.created_at
		ORDER BY n.created_at DESC`)

	stats := make([]engagement.DownloadStat, 0)
	var rows []struct {
		NoteID        string `db:"note_id"`
		NoteTitle     string `db:"note_title"`
		NoteSubject   string `db:"note_subject"`
		DownloadCount int    `db:"download_count"`
	}
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, teacherID); err != nil {
		return nil, wrapErr(err, "selecting download stats")
	}
	for _, r := range rows {
		stats = append(stats, engagement.DownloadStat(r))
	}
	return stats, nil
}

func (repo engagementRepository) CreateView(ctx context.Context, v engagement.View) (bool, error) {
	created, err := repo.insertOnce(ctx, `
		INSERT INTO assignment_views (id, assignment_id, student_id, viewed_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (assignment_id, student_id) DO NOTHING`,
		uuid.New().String(), v.AssignmentID, v.StudentID, v.ViewedAt,
	)
	return created, wrapErr(err, "inserting assignment view")
}

func (repo engagementRepository) QueryAssignmentViews(ctx context.Context, assignmentID string) ([]engagement.View, error) {
	q := repo.exec.Rebind(`
		SELECT v.id, v.assignment_id, v.student_id, v.viewed_at,
			COALESCE(u.name, '') AS student_name, COALESCE(u.email, '') AS student_email
		FROM assignment_views v
		LEFT JOIN users u ON u.id = v.student_id
		WHERE v.assignment_id = ?
		ORDER BY v.viewed_at`)

	var rows []struct {
		ID           string `db:"id"`
		AssignmentID string `db:"assignment_id"`
		StudentID    string `db:"student_id"`
		ViewedAt     int64  `db:"viewed_at"`
		StudentName  string `db:"student_name"`
		StudentEmail string `db:"student_email"`
	}
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, assignmentID); err != nil {
		return nil, wrapErr(err, "selecting assignment views")
	}

	views := make([]engagement.View, 0, len(rows))
	for _, r := range rows {
		views = append(views, engagement.View{
			ID:           r.ID,
			AssignmentID: r.AssignmentID,
			StudentID:    r.StudentID,
			ViewedAt:     r.ViewedAt,
			StudentName:  displayName(r.StudentName),
			StudentEmail: r.StudentEmail,
		})
	}
	return views, nil
}

func (repo engagementRepository) QueryTeacherAssignmentStats(ctx context.Context, teacherID string) ([]engagement.AssignmentStat, error) {
	q := repo.exec.Rebind(`
		SELECT a.id AS assignment_id, a.title AS assignment_title, a.subject AS assignment_subject,
			COUNT(v.id) AS view_count
		FROM assignments a
		LEFT JOIN assignment_views v ON v.assignment_id = a.id
		WHERE a.teacher_id = ?
		GROUP BY a.id, a.title, a.subject, a.created_at
		ORDER BY a.created_at DESC`)

	stats := make([]engagement.AssignmentStat, 0)
	var rows []struct {
		AssignmentID      string `db:"assignment_id"`
		AssignmentTitle   string `db:"assignment_title"`
		AssignmentSubject string `db:"assignment_subject"`
		ViewCount         int    `db:"view_count"`
	}
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, teacherID); err != nil {
		return nil, wrapErr(err, "selecting assignment stats")
	}
	for _, r := range rows {
		stats = append(stats, engagement.AssignmentStat(r))
	}
	return stats, nil
}
