// engine ties the parser, planner, and cursor together: it turns SQL text
// into a scrollable result set. Execution is a straightforward nested-loop
// join over materialized tables (no indexes, no query optimizer — the
// catalog.Adapter is expected to hand back whole tables, per spec.md's
// read-only, decoder-agnostic design), with the WHERE clause's flat
// condition list evaluated as a strict left-to-right fold rather than
// reshaped into an operator-precedence tree.
package engine

import (
	"context"
	"io"
	"strconv"

	"github.com/pxsql/pxsql/ast"
	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/cursor"
	"github.com/pxsql/pxsql/parser"
	"github.com/pxsql/pxsql/plan"
	"github.com/pxsql/pxsql/pxerr"
	"github.com/pxsql/pxsql/sqltype"
	"github.com/pxsql/pxsql/value"
)

// Engine runs SELECT statements against a catalog.Adapter.
type Engine struct {
	Catalog catalog.Adapter
}

// New returns an Engine backed by adapter.
func New(adapter catalog.Adapter) *Engine {
	return &Engine{Catalog: adapter}
}

// Parse tokenizes and parses sql into one or more SELECT statements.
func (e *Engine) Parse(sql string) ([]*ast.SelectStatement, error) {
	return parser.New(sql).Parse()
}

// Plan resolves stmt's table and column references against the engine's
// catalog.
func (e *Engine) Plan(ctx context.Context, stmt *ast.SelectStatement) (*plan.SelectPlan, error) {
	return plan.Plan(ctx, stmt, e.Catalog)
}

// Query parses, plans, and executes sql in one step, returning a cursor
// positioned before the first row. sql must contain exactly one statement.
func (e *Engine) Query(ctx context.Context, sql string) (*cursor.ResultSet, error) {
	stmts, err := e.Parse(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) != 1 {
		return nil, pxerr.New(pxerr.InvalidSQL, "expected exactly one statement, got %d", len(stmts))
	}
	return e.QueryStatement(ctx, stmts[0])
}

// QueryStatement plans and executes an already-parsed statement.
func (e *Engine) QueryStatement(ctx context.Context, stmt *ast.SelectStatement) (*cursor.ResultSet, error) {
	p, err := e.Plan(ctx, stmt)
	if err != nil {
		return nil, err
	}
	cols, rows, err := e.Execute(ctx, stmt, p)
	if err != nil {
		return nil, err
	}
	return cursor.New(cols, rows), nil
}

// assembly is one candidate combination of rows across the joined tables,
// keyed by table alias. A nil entry means the table didn't match on an
// outer join and every one of its columns reads as NULL.
type assembly map[string]value.Row

// Execute runs the bound plan against the statement's FROM/JOIN/WHERE/
// DISTINCT clauses and returns the projected column list and rows.
func (e *Engine) Execute(ctx context.Context, stmt *ast.SelectStatement, p *plan.SelectPlan) ([]catalog.Column, []value.Row, error) {
	assemblies, err := joinTables(ctx, stmt, p)
	if err != nil {
		return nil, nil, err
	}

	filtered := make([]assembly, 0, len(assemblies))
	for _, a := range assemblies {
		ok, err := evalConditionList(ctx, stmt.Where, p, a)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			filtered = append(filtered, a)
		}
	}

	cols, projs, err := buildProjection(ctx, stmt, p)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]value.Row, 0, len(filtered))
	for _, a := range filtered {
		row := make(value.Row, len(projs))
		for i, proj := range projs {
			fv, err := proj(a)
			if err != nil {
				return nil, nil, err
			}
			row[i] = fv
		}
		rows = append(rows, row)
	}

	if stmt.Distinct {
		rows = dedupe(rows)
	}
	return cols, rows, nil
}

// joinSpec describes how one FROM-list entry combines with the rows
// accumulated so far: CrossComma entries (the base table, and every
// comma-separated table after it) are unconditional; the rest carry the
// join kind and ON conditions from the AST.
type joinSpec struct {
	kind ast.JoinKind
	on   []ast.Node
}

// flattenJoins walks stmt.From in the same order plan.Plan bound tables
// in, so specs[i] always describes p.Tables[i].
func flattenJoins(stmt *ast.SelectStatement) []joinSpec {
	var specs []joinSpec
	for _, tr := range stmt.From {
		specs = append(specs, joinSpec{kind: ast.CrossComma})
		for _, j := range tr.Joins {
			specs = append(specs, joinSpec{kind: j.Kind, on: j.On})
		}
	}
	return specs
}

func joinTables(ctx context.Context, stmt *ast.SelectStatement, p *plan.SelectPlan) ([]assembly, error) {
	if len(p.Tables) == 0 {
		return nil, pxerr.New(pxerr.InvalidSQL, "no tables bound")
	}
	specs := flattenJoins(stmt)

	base := p.Tables[0]
	baseRows, err := scanAll(ctx, base.Table)
	if err != nil {
		return nil, err
	}
	assemblies := make([]assembly, 0, len(baseRows))
	for _, row := range baseRows {
		assemblies = append(assemblies, assembly{base.Alias: row})
	}

	for i := 1; i < len(p.Tables); i++ {
		tr := p.Tables[i]
		spec := specs[i]
		rightRows, err := scanAll(ctx, tr.Table)
		if err != nil {
			return nil, err
		}
		assemblies, err = applyJoin(ctx, p, spec, tr.Alias, assemblies, rightRows)
		if err != nil {
			return nil, err
		}
	}
	return assemblies, nil
}

func applyJoin(ctx context.Context, p *plan.SelectPlan, spec joinSpec, alias string, left []assembly, right []value.Row) ([]assembly, error) {
	var out []assembly
	switch spec.kind {
	case ast.CrossComma:
		for _, a := range left {
			for _, rr := range right {
				out = append(out, extend(a, alias, rr))
			}
		}
	case ast.InnerJoin:
		for _, a := range left {
			for _, rr := range right {
				na := extend(a, alias, rr)
				ok, err := evalConditionList(ctx, spec.on, p, na)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, na)
				}
			}
		}
	case ast.LeftOuterJoin:
		for _, a := range left {
			matched := false
			for _, rr := range right {
				na := extend(a, alias, rr)
				ok, err := evalConditionList(ctx, spec.on, p, na)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, na)
					matched = true
				}
			}
			if !matched {
				out = append(out, extend(a, alias, nil))
			}
		}
	case ast.RightOuterJoin:
		for _, rr := range right {
			matched := false
			for _, a := range left {
				na := extend(a, alias, rr)
				ok, err := evalConditionList(ctx, spec.on, p, na)
				if err != nil {
					return nil, err
				}
				if ok {
					out = append(out, na)
					matched = true
				}
			}
			if !matched {
				out = append(out, assembly{alias: rr})
			}
		}
	default:
		return nil, pxerr.New(pxerr.UnsupportedOperation, "unsupported join kind %v", spec.kind)
	}
	return out, nil
}

func extend(a assembly, alias string, row value.Row) assembly {
	na := make(assembly, len(a)+1)
	for k, v := range a {
		na[k] = v
	}
	na[alias] = row
	return na
}

func scanAll(ctx context.Context, t catalog.Table) ([]value.Row, error) {
	iter, err := t.Scan(ctx)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var rows []value.Row
	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// resolveField looks up a field reference against the plan's bound tables
// and fetches its value from the current assembly, returning a typed NULL
// when the table side of an outer join didn't match.
func resolveField(ctx context.Context, fr *ast.FieldRef, p *plan.SelectPlan, a assembly) (value.FieldValue, error) {
	alias := ""
	if fr.TableAlias != nil {
		alias = *fr.TableAlias
	}
	tr, idx, err := p.Resolve(alias, fr.Name)
	if err != nil {
		return value.FieldValue{}, err
	}
	return fetchBoundColumn(ctx, plan.Column{SourceTable: tr, ColumnIndex: idx}, a)
}

func fetchBoundColumn(ctx context.Context, pc plan.Column, a assembly) (value.FieldValue, error) {
	row, ok := a[pc.SourceTable.Alias]
	if !ok || row == nil {
		cols, err := pc.SourceTable.Table.Columns(ctx)
		if err != nil {
			return value.FieldValue{}, err
		}
		return value.Null(cols[pc.ColumnIndex].SQLType), nil
	}
	return row[pc.ColumnIndex], nil
}

// evalConditionList evaluates a flat condition list as a strict
// left-to-right fold: predicate, connector, predicate, connector, ...
// with no operator-precedence reshaping, matching the parser's flat
// representation of AND/OR/XOR. An empty list matches every row.
func evalConditionList(ctx context.Context, nodes []ast.Node, p *plan.SelectPlan, a assembly) (bool, error) {
	if len(nodes) == 0 {
		return true, nil
	}
	val, err := evalPredicate(ctx, nodes[0], p, a)
	if err != nil {
		return false, err
	}
	i := 1
	for i < len(nodes) {
		connector := nodes[i]
		i++
		if i >= len(nodes) {
			return false, pxerr.New(pxerr.InvalidSQL, "dangling boolean connective at end of condition list")
		}
		rhs, err := evalPredicate(ctx, nodes[i], p, a)
		i++
		if err != nil {
			return false, err
		}
		switch connector.(type) {
		case *ast.And:
			val = val && rhs
		case *ast.Or:
			val = val || rhs
		case *ast.Xor:
			val = val != rhs
		default:
			return false, pxerr.New(pxerr.InvalidSQL, "expected a boolean connective, got %T", connector)
		}
	}
	return val, nil
}

func evalPredicate(ctx context.Context, node ast.Node, p *plan.SelectPlan, a assembly) (bool, error) {
	switch n := node.(type) {
	case *ast.Equals:
		return compareEqual(ctx, n.Left, n.Right, p, a)
	case *ast.NotEquals:
		ok, err := compareEqual(ctx, n.Left, n.Right, p, a)
		return !ok, err
	case *ast.LessThan:
		return compareOrdered(ctx, n.Left, n.Right, p, a, func(c int) bool { return c < 0 })
	case *ast.GreaterThan:
		return compareOrdered(ctx, n.Left, n.Right, p, a, func(c int) bool { return c > 0 })
	case *ast.Between:
		low, err := compareOrdered(ctx, n.Low, n.Field, p, a, func(c int) bool { return c <= 0 })
		if err != nil {
			return false, err
		}
		high, err := compareOrdered(ctx, n.Field, n.High, p, a, func(c int) bool { return c <= 0 })
		if err != nil {
			return false, err
		}
		return low && high, nil
	case *ast.Not:
		ok, err := evalPredicate(ctx, n.Child, p, a)
		return !ok, err
	case *ast.Group:
		return evalConditionList(ctx, n.Conditions, p, a)
	case *ast.Exists:
		return evalExists(ctx, n, p)
	default:
		return false, pxerr.New(pxerr.InvalidSQL, "unsupported condition %T", node)
	}
}

func evalExists(ctx context.Context, n *ast.Exists, p *plan.SelectPlan) (bool, error) {
	sub, err := plan.Plan(ctx, n.Sub, p.Catalog)
	if err != nil {
		return false, err
	}
	assemblies, err := joinTables(ctx, n.Sub, sub)
	if err != nil {
		return false, err
	}
	for _, a := range assemblies {
		ok, err := evalConditionList(ctx, n.Sub.Where, sub, a)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func compareEqual(ctx context.Context, left, right ast.Node, p *plan.SelectPlan, a assembly) (bool, error) {
	lv, err := evalOperand(ctx, left, p, a)
	if err != nil {
		return false, err
	}
	rv, err := evalOperand(ctx, right, p, a)
	if err != nil {
		return false, err
	}
	return lv.Equal(rv), nil
}

func compareOrdered(ctx context.Context, left, right ast.Node, p *plan.SelectPlan, a assembly, test func(int) bool) (bool, error) {
	lv, err := evalOperand(ctx, left, p, a)
	if err != nil {
		return false, err
	}
	rv, err := evalOperand(ctx, right, p, a)
	if err != nil {
		return false, err
	}
	c, err := compareValues(lv, rv)
	if err != nil {
		return false, err
	}
	return test(c), nil
}

// compareValues orders two field values, preferring a numeric comparison
// when both sides' lexical form parses cleanly as a float and falling back
// to lexical ordering otherwise (dates/times render to a sortable lexical
// form via value.FieldValue.Lexical).
func compareValues(a, b value.FieldValue) (int, error) {
	as, aNull := a.Lexical()
	bs, bNull := b.Lexical()
	if aNull || bNull {
		return 0, pxerr.New(pxerr.DataFormat, "cannot compare NULL values")
	}
	if af, err := strconv.ParseFloat(as, 64); err == nil {
		if bf, err := strconv.ParseFloat(bs, 64); err == nil {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	switch {
	case as < bs:
		return -1, nil
	case as > bs:
		return 1, nil
	default:
		return 0, nil
	}
}

func evalOperand(ctx context.Context, node ast.Node, p *plan.SelectPlan, a assembly) (value.FieldValue, error) {
	switch v := node.(type) {
	case *ast.FieldRef:
		return resolveField(ctx, v, p, a)
	case *ast.CharacterLiteral:
		return value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text(v.Text)}, nil
	case *ast.NumericLiteral:
		return numericLiteralValue(v)
	default:
		return value.FieldValue{}, pxerr.New(pxerr.InvalidSQL, "unsupported operand %T", node)
	}
}

func numericLiteralValue(v *ast.NumericLiteral) (value.FieldValue, error) {
	if n, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
		return value.FieldValue{SQLType: sqltype.Integer, Raw: value.Integer(n)}, nil
	}
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return value.FieldValue{}, pxerr.Wrap(pxerr.InvalidSQL, err, "invalid numeric literal %q", v.Text)
	}
	return value.FieldValue{SQLType: sqltype.Double, Raw: value.Float(f)}, nil
}

// projector produces one output column's value for a given row assembly.
type projector func(a assembly) (value.FieldValue, error)

// buildProjection zips the statement's projection list with p.Columns
// (which plan.Plan populated in the same order for every FieldRef/Asterisk
// item, skipping literals) to produce the output column metadata and a
// projector per output column.
func buildProjection(ctx context.Context, stmt *ast.SelectStatement, p *plan.SelectPlan) ([]catalog.Column, []projector, error) {
	var cols []catalog.Column
	var projs []projector
	colIdx := 0

	addBound := func(name string) error {
		pc := p.Columns[colIdx]
		colIdx++
		srcCols, err := pc.SourceTable.Table.Columns(ctx)
		if err != nil {
			return err
		}
		sc := srcCols[pc.ColumnIndex]
		cols = append(cols, catalog.Column{Name: name, SQLType: sc.SQLType, Nullable: sc.Nullable, TableName: sc.TableName})
		projs = append(projs, func(a assembly) (value.FieldValue, error) {
			return fetchBoundColumn(ctx, pc, a)
		})
		return nil
	}

	for _, item := range stmt.Projection {
		switch v := item.(type) {
		case ast.Asterisk:
			for _, tr := range p.Tables {
				tcols, err := tr.Table.Columns(ctx)
				if err != nil {
					return nil, nil, err
				}
				for _, c := range tcols {
					if err := addBound(c.Name); err != nil {
						return nil, nil, err
					}
				}
			}
		case *ast.FieldRef:
			if err := addBound(v.Alias); err != nil {
				return nil, nil, err
			}
		case *ast.CharacterLiteral:
			cols = append(cols, catalog.Column{Name: v.Alias, SQLType: sqltype.VarChar})
			lit := value.Text(v.Text)
			projs = append(projs, func(a assembly) (value.FieldValue, error) {
				return value.FieldValue{SQLType: sqltype.VarChar, Raw: lit}, nil
			})
		case *ast.NumericLiteral:
			fv, err := numericLiteralValue(v)
			if err != nil {
				return nil, nil, err
			}
			cols = append(cols, catalog.Column{Name: v.Alias, SQLType: fv.SQLType})
			projs = append(projs, func(a assembly) (value.FieldValue, error) {
				return fv, nil
			})
		default:
			return nil, nil, pxerr.New(pxerr.InvalidSQL, "unsupported projection item %T", item)
		}
	}
	return cols, projs, nil
}

// dedupe removes rows equal (by value.FieldValue.Equal across every
// column) to one already seen, preserving first-seen order.
func dedupe(rows []value.Row) []value.Row {
	out := make([]value.Row, 0, len(rows))
	for _, r := range rows {
		dup := false
		for _, seen := range out {
			if rowsEqual(r, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

func rowsEqual(a, b value.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
