// Package driver lets pxsql's query engine be used through the standard
// database/sql package, the direct analogue of the original's
// java.sql.Driver/JDBC surface. It registers under the name "paradox",
// though since a catalog.Adapter isn't nameable by a plain DSN string
// (spec.md §1 keeps the binary table decoder out of scope), most callers
// will use OpenAdapter rather than sql.Open.
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"

	"github.com/pxsql/pxsql/ast"
	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/cursor"
	"github.com/pxsql/pxsql/engine"
	"github.com/pxsql/pxsql/memcatalog"
	"github.com/pxsql/pxsql/pxerr"
	"github.com/pxsql/pxsql/sqltype"
	"github.com/pxsql/pxsql/value"
)

func init() {
	sql.Register("paradox", &paradoxDriver{})
}

// paradoxDriver implements driver.Driver. Open only understands the name
// "demo" (or an empty name), which wires up memcatalog.Demo() for
// interactive exploration; real catalogs are reached through OpenAdapter.
type paradoxDriver struct{}

// Open implements driver.Driver.
func (d *paradoxDriver) Open(name string) (driver.Conn, error) {
	if name != "" && name != "demo" {
		return nil, pxerr.New(pxerr.NotFound, "no built-in catalog named %q; use driver.OpenAdapter for a real catalog.Adapter", name)
	}
	return &conn{engine: engine.New(memcatalog.Demo())}, nil
}

// connector adapts an arbitrary catalog.Adapter into a driver.Connector,
// the standard way to hand database/sql a driver configuration that isn't
// representable as a DSN string.
type connector struct {
	adapter catalog.Adapter
}

// Connect implements driver.Connector.
func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	return &conn{engine: engine.New(c.adapter)}, nil
}

// Driver implements driver.Connector.
func (c *connector) Driver() driver.Driver { return &paradoxDriver{} }

// OpenAdapter returns a *sql.DB backed directly by adapter, bypassing the
// DSN-string Open path.
func OpenAdapter(adapter catalog.Adapter) *sql.DB {
	return sql.OpenDB(&connector{adapter: adapter})
}

// conn implements driver.Conn over a single engine.Engine. Connections are
// not pooled resources the way a real file handle would be, so Close is a
// no-op.
type conn struct {
	engine *engine.Engine
}

// Begin implements driver.Conn. Transactions are a Non-goal (spec.md §1)
// since the engine never mutates anything.
func (c *conn) Begin() (driver.Tx, error) {
	return nil, pxerr.New(pxerr.UnsupportedOperation, "transactions are not supported")
}

// Close implements driver.Conn.
func (c *conn) Close() error { return nil }

// Prepare implements driver.Conn.
func (c *conn) Prepare(query string) (driver.Stmt, error) {
	stmts, err := c.engine.Parse(query)
	if err != nil {
		return nil, err
	}
	if len(stmts) != 1 {
		return nil, pxerr.New(pxerr.InvalidSQL, "expected exactly one statement, got %d", len(stmts))
	}
	return &stmt{engine: c.engine, text: query, stmt: stmts[0]}, nil
}

type stmt struct {
	engine *engine.Engine
	text   string
	stmt   *ast.SelectStatement
}

// Close implements driver.Stmt.
func (c *stmt) Close() error { return nil }

// NumInput implements driver.Stmt. pxsql's dialect has no bind
// parameters (spec.md §1's Non-goals), so every prepared statement takes
// exactly zero.
func (c *stmt) NumInput() int { return 0 }

// Exec implements driver.Stmt. SELECT is the only supported statement, so
// Exec always fails.
func (c *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, pxerr.New(pxerr.UnsupportedOperation, "pxsql is read-only: use Query, not Exec")
}

// Query implements driver.Stmt.
func (c *stmt) Query(args []driver.Value) (driver.Rows, error) {
	if len(args) != 0 {
		return nil, pxerr.New(pxerr.UnsupportedOperation, "bind parameters are not supported")
	}
	rs, err := c.engine.QueryStatement(context.Background(), c.stmt)
	if err != nil {
		return nil, err
	}
	return &rows{rs: rs}, nil
}

// rows implements driver.Rows over a cursor.ResultSet.
type rows struct {
	rs *cursor.ResultSet
}

// Close implements driver.Rows.
func (r *rows) Close() error { return r.rs.Close() }

// Columns implements driver.Rows.
func (r *rows) Columns() []string {
	cols := r.rs.Metadata()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Next implements driver.Rows.
func (r *rows) Next(dest []driver.Value) error {
	ok, err := r.rs.Next()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	for i := range dest {
		fv, err := r.rs.Get(i)
		if err != nil {
			return err
		}
		dv, err := toDriverValue(fv)
		if err != nil {
			return err
		}
		dest[i] = dv
	}
	return nil
}

// toDriverValue converts a FieldValue to one of the types driver.Value
// accepts (nil, int64, float64, bool, []byte, string, time.Time).
func toDriverValue(fv value.FieldValue) (driver.Value, error) {
	if fv.IsNull() {
		return nil, nil
	}
	switch fv.SQLType {
	case sqltype.Integer:
		n, _ := fv.Int64()
		return n, nil
	case sqltype.Double:
		f, _ := fv.Float64()
		return f, nil
	case sqltype.Boolean:
		b, _ := fv.Bool()
		return b, nil
	case sqltype.Binary:
		b, _ := fv.BytesValue()
		return b, nil
	case sqltype.Date, sqltype.Time, sqltype.Timestamp:
		t, _ := fv.Time()
		return t, nil
	default:
		s, _ := fv.Lexical()
		return s, nil
	}
}
