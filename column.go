package fleximon

import (
	"strings"
	"unicode"
)

// Recognized column names. Columns are configured by name; any other name
// projects to an empty cell.
const (
	ColumnHostname = "hostname"
	ColumnCheck    = "check"
	ColumnOutput   = "output"
	ColumnTeam     = "team"
	ColumnCategory = "category"
)

// accessors maps each recognized column to the event field it displays.
var accessors = map[string]func(Event) string{
	ColumnHostname: func(e Event) string { return e.Client.Name },
	ColumnCheck:    func(e Event) string { return e.Check.Name },
	ColumnOutput:   func(e Event) string { return e.Check.Output },
	ColumnTeam:     func(e Event) string { return e.Check.Team },
	ColumnCategory: func(e Event) string { return e.Check.Category },
}

// KnownColumns returns the recognized column names in display order.
func KnownColumns() []string {
	return []string{ColumnHostname, ColumnCheck, ColumnOutput, ColumnTeam, ColumnCategory}
}

// IsKnownColumn reports whether name is a recognized column.
func IsKnownColumn(name string) bool {
	_, ok := accessors[name]
	return ok
}

// Project extracts the cell value of the named column from an event.
//
// Unrecognized column names and absent fields yield an empty string.
// Trailing whitespace, check output newlines in particular, is stripped.
func Project(column string, e Event) string {
	accessor, ok := accessors[column]
	if !ok {
		return ""
	}
	return strings.TrimRightFunc(accessor(e), unicode.IsSpace)
}
