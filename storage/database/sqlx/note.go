package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/note"
)

const noteSelect = `
	SELECT n.id, n.title, n.content, n.file_url, n.file_storage_id, n.subject, n.teacher_id, n.created_at,
		COALESCE(u.name, '') AS teacher_name
	FROM notes n
	LEFT JOIN users u ON u.id = n.teacher_id`

type noteRow struct {
	ID            string      `db:"id"`
	Title         string      `db:"title"`
	Content       string      `db:"content"`
	FileURL       null.String `db:"file_url"`
	FileStorageID null.String `db:"file_storage_id"`
	Subject       string      `db:"subject"`
	TeacherID     string      `db:"teacher_id"`
	CreatedAt     int64       `db:"created_at"`
	TeacherName   string      `db:"teacher_name"`
}

func (r noteRow) note() note.Note {
	return note.Note{
		ID:            r.ID,
		Title:         r.Title,
		Content:       r.Content,
		FileURL:       r.FileURL,
		FileStorageID: r.FileStorageID,
		Subject:       r.Subject,
		TeacherID:     r.TeacherID,
		TeacherName:   displayName(r.TeacherName),
		CreatedAt:     fromNanos(r.CreatedAt),
	}
}

type noteRepository struct {
	exec sqlx.ExtContext
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(exec sqlx.ExtContext) *noteRepository {
	return &noteRepository{exec: exec}
}

func (repo noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	n.ID = uuid.New().String()
	q := repo.exec.Rebind(`
		INSERT INTO notes (id, title, content, file_url, file_storage_id, subject, teacher_id, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM notes))`)
	_, err := repo.exec.ExecContext(
		ctx, q,
		n.ID, n.Title, n.Content, n.FileURL, n.FileStorageID, n.Subject, n.TeacherID, toNanos(n.CreatedAt),
	)
	if err != nil {
		return note.Note{}, wrapErr(err, "inserting note")
	}
	n.TeacherName = ""
	return n, nil
}

func (repo noteRepository) QueryNotes(ctx context.Context, filter note.QueryFilter) ([]note.Note, error) {
	q := noteSelect
	args := make([]interface{}, 0, 2)
	if filter.TeacherID != "" {
		q += " WHERE n.teacher_id = ?"
		args = append(args, filter.TeacherID)
	}
	q += " ORDER BY " + core.NewestFirst.Qualified("n")
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []noteRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, repo.exec.Rebind(q), args...); err != nil {
		return nil, wrapErr(err, "selecting notes")
	}
	notes := make([]note.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, r.note())
	}
	return notes, nil
}

func (repo noteRepository) GetNote(ctx context.Context, id string) (note.Note, error) {
	var row noteRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, repo.exec.Rebind(noteSelect+" WHERE n.id = ?"), id); err != nil {
		if err == sql.ErrNoRows {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, wrapErr(err, "selecting note")
	}
	return row.note(), nil
}

func (repo noteRepository) DeleteNote(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind("DELETE FROM notes WHERE id = ?"), id)
	if err != nil {
		return wrapErr(err, "deleting note")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(err, "deleting note")
	}
	if n == 0 {
		return note.ErrNotFound
	}
	return nil
}
