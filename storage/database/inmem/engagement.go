package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/kistconnect/portal/core/engagement"
)

type engagementRepository struct {
	db *DB
}

var _ engagement.Repository = (*engagementRepository)(nil) // interface compliance check

func NewEngagementRepository(db *DB) *engagementRepository {
	return &engagementRepository{db: db}
}

func (repo *engagementRepository) CreateDownload(_ context.Context, d engagement.Download) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.downloads {
		if existing.NoteID == d.NoteID && existing.StudentID == d.StudentID {
			return false, nil
		}
	}
	d.ID = uuid.New().String()
	d.StudentName, d.StudentEmail = "", ""
	repo.db.downloads = append(repo.db.downloads, d)
	return true, nil
}

func (repo *engagementRepository) QueryNoteDownloads(_ context.Context, noteID string) ([]engagement.Download, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	downloads := make([]engagement.Download, 0)
	for _, d := range repo.db.downloads {
		if d.NoteID == noteID {
			d.StudentName, d.StudentEmail = repo.db.student(d.StudentID)
			downloads = append(downloads, d)
		}
	}
	return downloads, nil
}

func (repo *engagementRepository) QueryTeacherDownloadStats(_ context.Context, teacherID string) ([]engagement.DownloadStat, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stats := make([]engagement.DownloadStat, 0)
	for i := len(repo.db.notes) - 1; i >= 0; i-- {
		n := repo.db.notes[i]
		if n.TeacherID != teacherID {
			continue
		}
		stat := engagement.DownloadStat{NoteID: n.ID, NoteTitle: n.Title, NoteSubject: n.Subject}
		for _, d := range repo.db.downloads {
			if d.NoteID == n.ID {
				stat.DownloadCount++
			}
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

func (repo *engagementRepository) CreateView(_ context.Context, v engagement.View) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.views {
		if existing.AssignmentID == v.AssignmentID && existing.StudentID == v.StudentID {
			return false, nil
		}
	}
	v.ID = uuid.New().String()
	v.StudentName, v.StudentEmail = "", ""
	repo.db.views = append(repo.db.views, v)
	return true, nil
}

func (repo *engagementRepository) QueryAssignmentViews(_ context.Context, assignmentID string) ([]engagement.View, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	views := make([]engagement.View, 0)
	for _, v := range repo.db.views {
		if v.AssignmentID == assignmentID {
			v.StudentName, v.StudentEmail = repo.db.student(v.StudentID)
			views = append(views, v)
		}
	}
	return views, nil
}

func (repo *engagementRepository) QueryTeacherAssignmentStats(_ context.Context, teacherID string) ([]engagement.AssignmentStat, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stats := make([]engagement.AssignmentStat, 0)
	for i := len(repo.db.assignments) - 1; i >= 0; i-- {
		a := repo.db.assignments[i]
		if a.TeacherID != teacherID {
			continue
		}
		stat := engagement.AssignmentStat{AssignmentID: a.ID, AssignmentTitle: a.Title, AssignmentSubject: a.Subject}
		for _, v := range repo.db.views {
			if v.AssignmentID == a.ID {
				stat.ViewCount++
			}
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
