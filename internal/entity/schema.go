package entity

import (
	"strings"
	"time"
)

type SchemaName string

const (
	SchemaExtended SchemaName = "extended"
	SchemaCompact  SchemaName = "compact"
)

const (
	ColTimestamp       = "Timestamp"
	ColFirstName       = "First Name"
	ColLastName        = "Last Name"
	ColEmail           = "Email"
	ColPhone           = "Phone"
	ColSeminarDate     = "Seminar Date"
	ColTimeline        = "Timeline"
	ColStatus          = "Status"
	ColSeminarAssigned = "Seminar Assigned"
	ColAttended        = "Attended"
	ColNotes           = "Notes"
)

// Schema is the ordered column layout of the registrations table.
type Schema struct {
	Name    SchemaName
	Columns []string
}

func ExtendedSchema() Schema {
	return Schema{
		Name: SchemaExtended,
		Columns: []string{
			ColTimestamp, ColFirstName, ColLastName, ColEmail, ColPhone, ColSeminarDate,
			ColTimeline, ColStatus, ColSeminarAssigned, ColAttended, ColNotes,
		},
	}
}

func CompactSchema() Schema {
	return Schema{
		Name: SchemaCompact,
		Columns: []string{
			ColTimestamp, ColFirstName, ColLastName, ColEmail, ColPhone, ColSeminarDate,
			ColTimeline, ColStatus, ColNotes,
		},
	}
}

// SchemaByName falls back to the extended layout for unknown names.
func SchemaByName(name string) Schema {
	if SchemaName(strings.ToLower(strings.TrimSpace(name))) == SchemaCompact {
		return CompactSchema()
	}
	return ExtendedSchema()
}

func (s Schema) Header() []string {
	h := make([]string, len(s.Columns))
	copy(h, s.Columns)
	return h
}

func (s Schema) index(col string) int {
	for i, c := range s.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

func (s Schema) EmailColumn() int {
	return s.index(ColEmail)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseTimestamp accepts the ISO-8601 forms browsers and spreadsheets produce.
func ParseTimestamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s Schema) Row(reg *Registration) []string {
	row := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		row[i] = reg.field(col)
	}
	return row
}

// FromRow maps a stored row back to a Registration. Short rows leave trailing fields empty.
func (s Schema) FromRow(row []string) Registration {
	var reg Registration
	for i, col := range s.Columns {
		if i >= len(row) {
			break
		}
		reg.setField(col, row[i])
	}
	return reg
}

func (r *Registration) field(col string) string {
	switch col {
	case ColTimestamp:
		return FormatTimestamp(r.Timestamp)
	case ColFirstName:
		return r.FirstName
	case ColLastName:
		return r.LastName
	case ColEmail:
		return r.Email
	case ColPhone:
		return r.Phone
	case ColSeminarDate:
		return r.SeminarDate
	case ColTimeline:
		return r.Timeline
	case ColStatus:
		return r.Status
	case ColSeminarAssigned:
		return r.SeminarAssigned
	case ColAttended:
		return r.Attended
	case ColNotes:
		return r.Notes
	}
	return ""
}

func (r *Registration) setField(col, v string) {
	switch col {
	case ColTimestamp:
		if t, ok := ParseTimestamp(v); ok {
			r.Timestamp = t
		}
	case ColFirstName:
		r.FirstName = v
	case ColLastName:
		r.LastName = v
	case ColEmail:
		r.Email = v
	case ColPhone:
		r.Phone = v
	case ColSeminarDate:
		r.SeminarDate = v
	case ColTimeline:
		r.Timeline = v
	case ColStatus:
		r.Status = v
	case ColSeminarAssigned:
		r.SeminarAssigned = v
	case ColAttended:
		r.Attended = v
	case ColNotes:
		r.Notes = v
	}
}
