// cursor implements a materialized, bidirectionally-scrollable result set,
// the Go analogue of java.sql.ResultSet's TYPE_SCROLL_INSENSITIVE cursor
// model: the whole row set is held in memory and the cursor can move
// forward, backward, or jump to an absolute/relative position. Grounded on
// ParadoxResultSetTest.java's absolute/relative/first/last boundary
// behavior, reproduced bit-exact including on empty result sets.
package cursor

import (
	"strconv"

	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/pxerr"
	"github.com/pxsql/pxsql/value"
)

// position is the cursor's closed state: before the first row, on a given
// zero-based row index, or after the last row.
type position int

const (
	posBeforeFirst position = iota
	posOn
	posAfterLast
)

// ResultSet is a scrollable, materialized set of rows over a fixed column
// list. The zero value is not usable; construct with New.
type ResultSet struct {
	columns []catalog.Column
	rows    []value.Row
	pos     position
	row     int // valid only when pos == posOn
	closed  bool
	wasNull bool
}

// New returns a ResultSet positioned before the first row, per spec.md's
// initial-cursor invariant.
func New(columns []catalog.Column, rows []value.Row) *ResultSet {
	return &ResultSet{columns: columns, rows: rows, pos: posBeforeFirst}
}

func (r *ResultSet) checkOpen() error {
	if r.closed {
		return pxerr.New(pxerr.InvalidState, "result set is closed")
	}
	return nil
}

// Close releases the result set. Repeated calls are a no-op, matching
// java.sql.ResultSet.close's documented idempotence.
func (r *ResultSet) Close() error {
	r.closed = true
	return nil
}

// BeforeFirst rewinds the cursor to before the first row.
func (r *ResultSet) BeforeFirst() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	r.pos = posBeforeFirst
	r.row = 0
	return nil
}

// AfterLast advances the cursor to after the last row.
func (r *ResultSet) AfterLast() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	r.pos = posAfterLast
	r.row = 0
	return nil
}

// Next advances one row and reports whether the new position lands on a
// row. Calling Next past the last row leaves the cursor AfterLast and
// returns false; calling it again stays AfterLast and keeps returning
// false, matching ParadoxResultSetTest.testNoFirstResult.
func (r *ResultSet) Next() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	switch r.pos {
	case posBeforeFirst:
		if len(r.rows) == 0 {
			r.pos = posAfterLast
			return false, nil
		}
		r.pos, r.row = posOn, 0
		return true, nil
	case posOn:
		if r.row+1 >= len(r.rows) {
			r.pos = posAfterLast
			return false, nil
		}
		r.row++
		return true, nil
	default: // posAfterLast
		return false, nil
	}
}

// Previous moves one row back, symmetric with Next.
func (r *ResultSet) Previous() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	switch r.pos {
	case posAfterLast:
		if len(r.rows) == 0 {
			r.pos = posBeforeFirst
			return false, nil
		}
		r.pos, r.row = posOn, len(r.rows)-1
		return true, nil
	case posOn:
		if r.row == 0 {
			r.pos = posBeforeFirst
			return false, nil
		}
		r.row--
		return true, nil
	default: // posBeforeFirst
		return false, nil
	}
}

// First moves to the first row, reporting false (and leaving the cursor
// BeforeFirst) on an empty result set, per testNoFirstResult.
func (r *ResultSet) First() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	if len(r.rows) == 0 {
		r.pos = posBeforeFirst
		return false, nil
	}
	r.pos, r.row = posOn, 0
	return true, nil
}

// Last moves to the last row, reporting false on an empty result set.
func (r *ResultSet) Last() (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	if len(r.rows) == 0 {
		r.pos = posAfterLast
		return false, nil
	}
	r.pos, r.row = posOn, len(r.rows)-1
	return true, nil
}

// Absolute jumps to a 1-based row number, or counts back from the end when
// n is negative (-1 is the last row). It reproduces
// ParadoxResultSetTest's boundary cases exactly:
//
//   - absolute(0) on an empty result set succeeds and leaves the cursor
//     BeforeFirst (testAbsoluteEmpty).
//   - absolute(1) on an empty result set fails and leaves the cursor
//     AfterLast (testAbsoluteInvalidRow).
//   - absolute(-1) on an empty result set fails and leaves the cursor
//     BeforeFirst (testAbsoluteLowRowValue).
//   - absolute(-1) on a non-empty result set succeeds and lands on the
//     last row (testAbsoluteNegativeRowValue).
//
// n==0 on an empty result set is the only case that needs special-casing;
// every other n, empty result set or not, falls through to the general
// idx-based computation below.
func (r *ResultSet) Absolute(n int) (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	if len(r.rows) == 0 && n == 0 {
		r.pos = posBeforeFirst
		return true, nil
	}
	idx := n
	if n < 0 {
		idx = len(r.rows) + n + 1
	}
	if idx < 1 {
		r.pos = posBeforeFirst
		return false, nil
	}
	if idx > len(r.rows) {
		r.pos = posAfterLast
		return false, nil
	}
	r.pos, r.row = posOn, idx-1
	return true, nil
}

// Relative moves n rows from the current position; negative moves
// backward. Overshooting either end lands BeforeFirst/AfterLast and
// returns false, the same semantics as Absolute's boundary handling.
func (r *ResultSet) Relative(n int) (bool, error) {
	if err := r.checkOpen(); err != nil {
		return false, err
	}
	var cur int
	switch r.pos {
	case posBeforeFirst:
		cur = 0
	case posOn:
		cur = r.row + 1
	case posAfterLast:
		cur = len(r.rows) + 1
	}
	return r.Absolute(cur + n)
}

// IsBeforeFirst, IsAfterLast, IsFirst, IsLast report the cursor's position
// relative to the row set.
func (r *ResultSet) IsBeforeFirst() bool { return r.pos == posBeforeFirst }
func (r *ResultSet) IsAfterLast() bool   { return r.pos == posAfterLast }
func (r *ResultSet) IsFirst() bool       { return r.pos == posOn && r.row == 0 }
func (r *ResultSet) IsLast() bool        { return r.pos == posOn && r.row == len(r.rows)-1 }

// GetRow returns the current 1-based row number, or 0 when the cursor is
// not positioned on a row.
func (r *ResultSet) GetRow() int {
	if r.pos != posOn {
		return 0
	}
	return r.row + 1
}

// Metadata describes the result set's columns, the Go analogue of
// java.sql.ResultSetMetaData.
func (r *ResultSet) Metadata() []catalog.Column {
	return r.columns
}

// FindColumn returns the 0-based index of the named column, case
// insensitively, or an error if no such column is projected.
func (r *ResultSet) FindColumn(name string) (int, error) {
	for i, c := range r.columns {
		if equalFold(c.Name, name) {
			return i, nil
		}
	}
	return 0, pxerr.New(pxerr.InvalidSQL, "unknown column %q", name)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// currentRow returns the row at the cursor, erroring if the cursor isn't
// positioned on one.
func (r *ResultSet) currentRow() (value.Row, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if r.pos != posOn {
		return nil, pxerr.New(pxerr.InvalidState, "cursor is not positioned on a row")
	}
	return r.rows[r.row], nil
}

// Get returns the raw field value at 0-based column index i, recording
// WasNull for the subsequent WasNull call.
func (r *ResultSet) Get(i int) (value.FieldValue, error) {
	row, err := r.currentRow()
	if err != nil {
		return value.FieldValue{}, err
	}
	if i < 0 || i >= len(row) {
		return value.FieldValue{}, pxerr.New(pxerr.InvalidSQL, "column index %d out of range", i)
	}
	fv := row[i]
	r.wasNull = fv.IsNull()
	return fv, nil
}

// GetByName returns the raw field value for the named column.
func (r *ResultSet) GetByName(name string) (value.FieldValue, error) {
	i, err := r.FindColumn(name)
	if err != nil {
		return value.FieldValue{}, err
	}
	return r.Get(i)
}

// WasNull reports whether the field most recently fetched via Get/GetByName
// (or any of the typed accessors below) was NULL.
func (r *ResultSet) WasNull() bool { return r.wasNull }

// GetString returns column i's lexical string form, or "" if NULL.
func (r *ResultSet) GetString(i int) (string, error) {
	fv, err := r.Get(i)
	if err != nil {
		return "", err
	}
	s, _ := fv.Lexical()
	return s, nil
}

// GetInt64 returns column i coerced to an integer, or 0 if NULL.
func (r *ResultSet) GetInt64(i int) (int64, error) {
	fv, err := r.Get(i)
	if err != nil {
		return 0, err
	}
	n, _ := fv.Int64()
	return n, nil
}

// GetFloat64 returns column i coerced to a float, or 0 if NULL.
func (r *ResultSet) GetFloat64(i int) (float64, error) {
	fv, err := r.Get(i)
	if err != nil {
		return 0, err
	}
	n, _ := fv.Float64()
	return n, nil
}

// GetBool returns column i coerced to a boolean, or false if NULL.
func (r *ResultSet) GetBool(i int) (bool, error) {
	fv, err := r.Get(i)
	if err != nil {
		return false, err
	}
	b, _ := fv.Bool()
	return b, nil
}

// String implements fmt.Stringer for debugging: "row <n>/<total>".
func (r *ResultSet) String() string {
	switch r.pos {
	case posBeforeFirst:
		return "cursor(before first, " + strconv.Itoa(len(r.rows)) + " rows)"
	case posAfterLast:
		return "cursor(after last, " + strconv.Itoa(len(r.rows)) + " rows)"
	default:
		return "cursor(row " + strconv.Itoa(r.row+1) + "/" + strconv.Itoa(len(r.rows)) + ")"
	}
}
