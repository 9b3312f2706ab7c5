package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kistconnect/portal/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = uuid.New().String()
	a.TeacherName = ""
	repo.db.assignments = append(repo.db.assignments, a)
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assignments := make([]assignment.Assignment, 0, len(repo.db.assignments))
	for i := len(repo.db.assignments) - 1; i >= 0; i-- { // latest insert first
		a := repo.db.assignments[i]
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		a.TeacherName = repo.db.teacherName(a.TeacherID)
		assignments = append(assignments, a)
	}
	sort.SliceStable(assignments, func(i, j int) bool { return assignments[i].CreatedAt.After(assignments[j].CreatedAt) })

	if filter.Limit > 0 && len(assignments) > filter.Limit {
		assignments = assignments[:filter.Limit]
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if i := repo.db.assignmentIndex(id); i >= 0 {
		a := repo.db.assignments[i]
		a.TeacherName = repo.db.teacherName(a.TeacherID)
		return a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.assignmentIndex(id)
	if i < 0 {
		return assignment.ErrNotFound
	}
	repo.db.assignments = append(repo.db.assignments[:i], repo.db.assignments[i+1:]...)
	return nil
}

// assignmentIndex returns -1 when the assignment does not exist. Caller holds the lock.
func (db *DB) assignmentIndex(id string) int {
	for i, a := range db.assignments {
		if a.ID == id {
			return i
		}
	}
	return -1
}
