package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRow is matched by every MalformedRowError
	ErrMalformedRow = errors.New("malformed row")

	// ErrMissingColumn reports a rule column the table does not have
	ErrMissingColumn = errors.New("column missing from table")
)

// MalformedRowError reports a cell that does not have the type its column
// rule requires, e.g. a number in a free-text column.
type MalformedRowError struct {
	Table  string
	Row    int
	Column string
	Value  interface{}
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d in %s: column %s expects text, got %T (%v)",
		e.Row, e.Table, e.Column, e.Value, e.Value)
}

// Is makes errors.Is(err, ErrMalformedRow) succeed
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// At returns a copy of e positioned at the given table and row index
func (e *MalformedRowError) At(table string, row int) *MalformedRowError {
	out := *e
	out.Table = table
	out.Row = row
	return &out
}

// PositionError fills in table and row on a MalformedRowError, leaving other
// errors untouched
func PositionError(err error, table string, row int) error {
	var mre *MalformedRowError
	if errors.As(err, &mre) {
		return mre.At(table, row)
	}
	return err
}
