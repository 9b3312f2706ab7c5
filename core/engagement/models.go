package engagement

// Event kinds
const (
	KindDownload = "download"
	KindView     = "view"
)

// Download records the first time a student downloaded a note.
type Download struct {
	ID           string `json:"id"`
	NoteID       string `json:"noteId"`
	StudentID    string `json:"studentId"`
	DownloadedAt int64  `json:"downloadedAt"` // unix ms
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// View records the first time a student opened an assignment.
type View struct {
	ID           string `json:"id"`
	AssignmentID string `json:"assignmentId"`
	StudentID    string `json:"studentId"`
	ViewedAt     int64  `json:"viewedAt"` // unix ms
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

type DownloadStat struct {
	NoteID        string `json:"noteId"`
	NoteTitle     string `json:"noteTitle"`
	NoteSubject   string `json:"noteSubject"`
	DownloadCount int    `json:"downloadCount"`
}

type AssignmentStat struct {
	AssignmentID      string `json:"assignmentId"`
	AssignmentTitle   string `json:"assignmentTitle"`
	AssignmentSubject string `json:"assignmentSubject"`
	ViewCount         int    `json:"viewCount"`
}
