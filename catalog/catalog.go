// catalog defines the interface the core consumes to reach the tables in a
// filesystem-directory-as-database. The Paradox binary decoder and the
// directory walker that implement this interface against real .DB files are
// external collaborators, out of scope for this module (spec.md §1); only
// the in-memory fixture in memcatalog lives here.
package catalog

import (
	"context"

	"github.com/pxsql/pxsql/sqltype"
	"github.com/pxsql/pxsql/value"
)

// Column describes a single column of a table: its name, SQL type, and
// nullability. TableName names the table the column belongs to and is
// filled in by the adapter; the plan/execution layer only copies it.
type Column struct {
	Name      string
	SQLType   sqltype.Code
	Nullable  bool
	TableName string
}

// Table is a single catalog entry: a named, columned, scannable relation.
type Table interface {
	Name() string
	Columns(ctx context.Context) ([]Column, error)
	Scan(ctx context.Context) (RowIter, error)
}

// RowIter is a forward-only, finite iterator over a table's rows.
type RowIter interface {
	// Next returns the next row, or io.EOF when exhausted.
	Next(ctx context.Context) (value.Row, error)
	Close() error
}

// Adapter enumerates the tables available in a named schema (a filesystem
// directory, in the external Paradox implementation).
type Adapter interface {
	// ListTables returns the tables whose name matches namePattern,
	// case-insensitively. An empty pattern matches every table.
	ListTables(ctx context.Context, namePattern string) ([]Table, error)
}
