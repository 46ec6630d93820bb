// plan implements the logical planner: resolving identifiers against a
// catalog, validating table aliases, detecting ambiguity, and producing a
// SelectPlan that carries the bound tables and the columns the query
// projects. SelectPlan is built by two append operations, AddTable and
// AddColumn, and is frozen once execution begins — the same
// binding-then-execute split as the teacher's selectPlanner, though the
// teacher's second stage targets bytecode generation and ours targets
// direct row production (see the engine package).
package plan

import (
	"context"
	"strings"

	"github.com/pxsql/pxsql/ast"
	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/pxerr"
)

// TableRef is a single FROM-list binding: an alias and the catalog table it
// names. Table may be nil — resolution against a nil-table alias fails
// lazily, at AddColumn/Resolve time, per spec.md §4.3.
type TableRef struct {
	Alias string
	Table catalog.Table
}

// Column is a single bound projection column: which table it came from and
// its index within that table's column list.
type Column struct {
	SourceTable *TableRef
	ColumnIndex int
	Name        string
}

// SelectPlan is the resolved, alias-bound representation of a query, ready
// for execution. It is mutable only during planning (AddTable/AddColumn)
// and is treated as frozen once execution starts.
type SelectPlan struct {
	Catalog catalog.Adapter
	Tables  []*TableRef
	Columns []Column
}

// NewSelectPlan returns an empty plan reaching the given catalog.
func NewSelectPlan(adapter catalog.Adapter) *SelectPlan {
	return &SelectPlan{Catalog: adapter}
}

// AddTable appends a table binding. Alias collisions are not checked here;
// they surface when AddColumn resolves a qualified reference against the
// duplicated alias, matching spec.md §4.3's note that alias/null-table problems are
// detected lazily at AddColumn time.
func (p *SelectPlan) AddTable(alias string, t catalog.Table) *TableRef {
	tr := &TableRef{Alias: alias, Table: t}
	p.Tables = append(p.Tables, tr)
	return tr
}

// AddColumn parses reference into an optional "alias." prefix and a column
// name, resolves it against the bound tables, and appends the result.
// p.Columns grows by exactly one on success and is left unchanged on
// error, per spec.md invariant 3.
func (p *SelectPlan) AddColumn(reference string) error {
	tableAlias, colName := splitReference(reference)
	tr, idx, err := p.Resolve(tableAlias, colName)
	if err != nil {
		return err
	}
	p.Columns = append(p.Columns, Column{SourceTable: tr, ColumnIndex: idx, Name: colName})
	return nil
}

// Resolve binds a (possibly empty) table alias and a column name against
// the plan's tables, applying spec.md §4.3's resolution rules:
//
//   - qualified (tableAlias != ""): the unique table with that alias must
//     exist and have a non-nil underlying table; the column must exist on
//     it, case-insensitively.
//   - unqualified: every bound table's columns are searched; a match in
//     two or more tables is an ambiguity error, zero matches is unknown
//     column, exactly one match binds.
func (p *SelectPlan) Resolve(tableAlias, colName string) (*TableRef, int, error) {
	ctx := context.Background()
	if tableAlias != "" {
		var match *TableRef
		for _, tr := range p.Tables {
			if strings.EqualFold(tr.Alias, tableAlias) {
				if match != nil {
					return nil, 0, pxerr.New(pxerr.InvalidSQL, "ambiguous table alias %q", tableAlias)
				}
				match = tr
			}
		}
		if match == nil {
			return nil, 0, pxerr.New(pxerr.InvalidSQL, "unknown table alias %q", tableAlias)
		}
		if match.Table == nil {
			return nil, 0, pxerr.New(pxerr.InvalidSQL, "alias %q has no underlying table", tableAlias)
		}
		idx, err := columnIndex(ctx, match.Table, colName)
		if err != nil {
			return nil, 0, err
		}
		return match, idx, nil
	}

	var matchTable *TableRef
	matchIdx := -1
	matches := 0
	for _, tr := range p.Tables {
		if tr.Table == nil {
			continue
		}
		idx, err := columnIndex(ctx, tr.Table, colName)
		if err != nil {
			continue
		}
		matches++
		matchTable, matchIdx = tr, idx
	}
	switch matches {
	case 0:
		return nil, 0, pxerr.New(pxerr.InvalidSQL, "unknown column %q", colName)
	case 1:
		return matchTable, matchIdx, nil
	default:
		return nil, 0, pxerr.New(pxerr.InvalidSQL, "ambiguous column %q", colName)
	}
}

func splitReference(ref string) (alias, name string) {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

func columnIndex(ctx context.Context, t catalog.Table, name string) (int, error) {
	cols, err := t.Columns(ctx)
	if err != nil {
		return 0, err
	}
	for i, c := range cols {
		if strings.EqualFold(c.Name, name) {
			return i, nil
		}
	}
	return 0, pxerr.New(pxerr.InvalidSQL, "unknown column %q", name)
}

// Plan is the façade-level resolver: it walks a parsed SelectStatement's
// FROM/JOIN tables, binds them, and appends every projected FieldRef/
// Asterisk column to the resulting plan — not part of spec.md's core
// (spec.md §4.3 sketches execution as out of core) but needed as the
// entry point SPEC_FULL.md §5.5/§6 names.
func Plan(ctx context.Context, stmt *ast.SelectStatement, adapter catalog.Adapter) (*SelectPlan, error) {
	p := NewSelectPlan(adapter)
	seenAlias := map[string]bool{}
	bindTable := func(alias, name string) error {
		if seenAlias[strings.ToLower(alias)] {
			return pxerr.New(pxerr.InvalidSQL, "duplicate table alias %q", alias)
		}
		seenAlias[strings.ToLower(alias)] = true
		t, err := lookupTable(ctx, adapter, name)
		if err != nil {
			return err
		}
		p.AddTable(alias, t)
		return nil
	}
	for _, tr := range stmt.From {
		if err := bindTable(tr.Alias, tr.Name); err != nil {
			return nil, err
		}
		for _, j := range tr.Joins {
			if err := bindTable(j.Alias, j.TableName); err != nil {
				return nil, err
			}
		}
	}
	for _, item := range stmt.Projection {
		switch v := item.(type) {
		case ast.Asterisk:
			for _, tr := range p.Tables {
				cols, err := tr.Table.Columns(ctx)
				if err != nil {
					return nil, err
				}
				for _, c := range cols {
					if err := p.AddColumn(tr.Alias + "." + c.Name); err != nil {
						return nil, err
					}
				}
			}
		case *ast.FieldRef:
			ref := v.Name
			if v.TableAlias != nil {
				ref = *v.TableAlias + "." + v.Name
			}
			if err := p.AddColumn(ref); err != nil {
				return nil, err
			}
		default:
			// Character/Numeric literal projection items aren't bound to a
			// table column; the engine projects them directly from the AST.
		}
	}
	return p, nil
}

func lookupTable(ctx context.Context, adapter catalog.Adapter, name string) (catalog.Table, error) {
	tables, err := adapter.ListTables(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, pxerr.New(pxerr.NotFound, "unknown table %q", name)
	}
	return tables[0], nil
}
