package inmemdb

import (
	"sync"

	"github.com/kistconnect/portal/core/assignment"
	"github.com/kistconnect/portal/core/engagement"
	"github.com/kistconnect/portal/core/note"
	"github.com/kistconnect/portal/core/sitesettings"
	"github.com/kistconnect/portal/core/user"
)

// DB keeps every table in memory.
// Reads join across tables, so a single lock guards all of them.
type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	notes       []note.Note             // insertion order
	assignments []assignment.Assignment // insertion order
	downloads   []engagement.Download
	views       []engagement.View
	settings    *sitesettings.SiteSettings
}

func Open() *DB {
	return &DB{users: make(map[string]*user.User)}
}

// Reset drops all the data.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*user.User)
	db.notes = nil
	db.assignments = nil
	db.downloads = nil
	db.views = nil
	db.settings = nil
}

// student returns the name & email to show for a student id. Caller holds the lock.
func (db *DB) student(id string) (name, email string) {
	name = user.UnknownName
	if usr, ok := db.users[id]; ok {
		if usr.Name != "" {
			name = usr.Name
		}
		email = usr.Email
	}
	return name, email
}

// teacherName returns the name to show for a teacher id. Caller holds the lock.
func (db *DB) teacherName(id string) string {
	if usr, ok := db.users[id]; ok && usr.Name != "" {
		return usr.Name
	}
	return user.UnknownName
}
