package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kistconnect/portal/core/note"
)

type noteRepository struct {
	db *DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *DB) *noteRepository {
	return &noteRepository{db: db}
}

func (repo *noteRepository) CreateNote(_ context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n.ID = uuid.New().String()
	n.TeacherName = ""
	repo.db.notes = append(repo.db.notes, n)
	return n, nil
}

func (repo *noteRepository) QueryNotes(_ context.Context, filter note.QueryFilter) ([]note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notes := make([]note.Note, 0, len(repo.db.notes))
	for i := len(repo.db.notes) - 1; i >= 0; i-- { // latest insert first
		n := repo.db.notes[i]
		if filter.TeacherID != "" && n.TeacherID != filter.TeacherID {
			continue
		}
		n.TeacherName = repo.db.teacherName(n.TeacherID)
		notes = append(notes, n)
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })

	if filter.Limit > 0 && len(notes) > filter.Limit {
		notes = notes[:filter.Limit]
	}
	return notes, nil
}

func (repo *noteRepository) GetNote(_ context.Context, id string) (note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if i := repo.db.noteIndex(id); i >= 0 {
		n := repo.db.notes[i]
		n.TeacherName = repo.db.teacherName(n.TeacherID)
		return n, nil
	}
	return note.Note{}, note.ErrNotFound
}

func (repo *noteRepository) DeleteNote(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.noteIndex(id)
	if i < 0 {
		return note.ErrNotFound
	}
	repo.db.notes = append(repo.db.notes[:i], repo.db.notes[i+1:]...)
	return nil
}

// noteIndex returns -1 when the note does not exist. Caller holds the lock.
func (db *DB) noteIndex(id string) int {
	for i, n := range db.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
