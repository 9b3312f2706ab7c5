package core

type DBOrdering struct {
	Field     string
	Ascending bool
	// Tiebreak orders rows sharing the same Field value, in the same direction.
	Tiebreak string
}

func (ord DBOrdering) String() string {
	return ord.Qualified("")
}

// Qualified returns the ordering with every column prefixed by the table alias.
func (ord DBOrdering) Qualified(alias string) string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}

	s := prefix + ord.Field + " " + direction
	if ord.Tiebreak != "" {
		s += ", " + prefix + ord.Tiebreak + " " + direction
	}
	return s
}

// NewestFirst orders records by creation time, most recent first.
// Records created at the same instant come out in reverse insertion order.
var NewestFirst = DBOrdering{Field: "created_at", Tiebreak: "seq"}

// ListParams are the optional query parameters of listing endpoints.
type ListParams struct {
	// Limit caps the number of records returned. 0 means all of them.
	Limit int `json:"limit" query:"limit" validate:"omitempty,min=1,max=100"`
}
