// memcatalog is an in-memory implementation of catalog.Adapter, used by
// the plan, engine and driver tests and by the REPL's --demo mode in place of the
// Paradox binary decoder and directory walker (both out of scope per
// spec.md §1). It holds whole tables in memory and scans them by linearly
// walking a slice, the same style the teacher's catalog package uses to
// walk its schema objects.
package memcatalog

import (
	"context"
	"io"
	"strings"

	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/value"
)

// Catalog is a fixed set of named, in-memory tables.
type Catalog struct {
	tables []*Table
}

// New returns an empty catalog. Use AddTable to seed it.
func New() *Catalog {
	return &Catalog{}
}

// AddTable registers a table, returning the catalog for chaining.
func (c *Catalog) AddTable(t *Table) *Catalog {
	c.tables = append(c.tables, t)
	return c
}

// ListTables implements catalog.Adapter. The match is case-insensitive; an
// empty pattern or "*" matches every table.
func (c *Catalog) ListTables(ctx context.Context, namePattern string) ([]catalog.Table, error) {
	if namePattern == "" || namePattern == "*" {
		out := make([]catalog.Table, len(c.tables))
		for i, t := range c.tables {
			out[i] = t
		}
		return out, nil
	}
	out := []catalog.Table{}
	for _, t := range c.tables {
		if strings.EqualFold(t.name, namePattern) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Table is a named, columned, in-memory relation.
type Table struct {
	name    string
	columns []catalog.Column
	rows    []value.Row
}

// NewTable builds a Table with the given columns and rows. Each column's
// TableName is stamped with name.
func NewTable(name string, columns []catalog.Column, rows []value.Row) *Table {
	stamped := make([]catalog.Column, len(columns))
	for i, c := range columns {
		c.TableName = name
		stamped[i] = c
	}
	return &Table{name: name, columns: stamped, rows: rows}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Columns(ctx context.Context) ([]catalog.Column, error) {
	return t.columns, nil
}

func (t *Table) Scan(ctx context.Context) (catalog.RowIter, error) {
	return &rowIter{rows: t.rows}, nil
}

type rowIter struct {
	rows []value.Row
	pos  int
}

func (it *rowIter) Next(ctx context.Context) (value.Row, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *rowIter) Close() error {
	it.pos = len(it.rows)
	return nil
}
