package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/assignment"
)

const assignmentSelect = `
	SELECT a.id, a.title, a.description, a.due_date, a.subject, a.link, a.teacher_id, a.created_at,
		COALESCE(u.name, '') AS teacher_name
	FROM assignments a
	LEFT JOIN users u ON u.id = a.teacher_id`

type assignmentRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	DueDate     string      `db:"due_date"`
	Subject     string      `db:"subject"`
	Link        null.String `db:"link"`
	TeacherID   string      `db:"teacher_id"`
	CreatedAt   int64       `db:"created_at"`
	TeacherName string      `db:"teacher_name"`
}

func (r assignmentRow) assignment() assignment.Assignment {
	return assignment.Assignment{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Subject:     r.Subject,
		Link:        r.Link,
		TeacherID:   r.TeacherID,
		TeacherName: displayName(r.TeacherName),
		CreatedAt:   fromNanos(r.CreatedAt),
	}
}

type assignmentRepository struct {
	exec sqlx.ExtContext
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec sqlx.ExtContext) *assignmentRepository {
	return &assignmentRepository{exec: exec}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	q := repo.exec.Rebind(`
		INSERT INTO assignments (id, title, description, due_date, subject, link, teacher_id, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM assignments))`)
	_, err := repo.exec.ExecContext(
		ctx, q,
		a.ID, a.Title, a.Description, a.DueDate, a.Subject, a.Link, a.TeacherID, toNanos(a.CreatedAt),
	)
	if err != nil {
		return assignment.Assignment{}, wrapErr(err, "inserting assignment")
	}
	a.TeacherName = ""
	return a, nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	q := assignmentSelect
	args := make([]interface{}, 0, 2)
	if filter.TeacherID != "" {
		q += " WHERE a.teacher_id = ?"
		args = append(args, filter.TeacherID)
	}
	q += " ORDER BY " + core.NewestFirst.Qualified("a")
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []assignmentRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, repo.exec.Rebind(q), args...); err != nil {
		return nil, wrapErr(err, "selecting assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.assignment())
	}
	return assignments, nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	var row assignmentRow
	q := repo.exec.Rebind(assignmentSelect + " WHERE a.id = ?")
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, wrapErr(err, "selecting assignment")
	}
	return row.assignment(), nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind("DELETE FROM assignments WHERE id = ?"), id)
	if err != nil {
		return wrapErr(err, "deleting assignment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(err, "deleting assignment")
	}
	if n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}
