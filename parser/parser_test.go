package parser

import (
	"testing"

	"github.com/pxsql/pxsql/ast"
	"github.com/pxsql/pxsql/pxerr"
)

// TestParseSimpleSelect reproduces spec.md §8 boundary scenario #1.
func TestParseSimpleSelect(t *testing.T) {
	stmts, err := New("SELECT * FROM t").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement got %d", len(stmts))
	}
	stmt := stmts[0]
	if stmt.Distinct {
		t.Error("expected Distinct=false")
	}
	if len(stmt.Projection) != 1 {
		t.Fatalf("expected 1 projection item got %d", len(stmt.Projection))
	}
	if _, ok := stmt.Projection[0].(ast.Asterisk); !ok {
		t.Errorf("expected Asterisk got %T", stmt.Projection[0])
	}
	if len(stmt.From) != 1 || stmt.From[0].Name != "t" || stmt.From[0].Alias != "t" {
		t.Errorf("unexpected From: %#v", stmt.From)
	}
	if len(stmt.Where) != 0 {
		t.Errorf("expected no WHERE conditions, got %#v", stmt.Where)
	}
}

func TestParseProjectionWithAliases(t *testing.T) {
	stmts, err := New("SELECT AC as ACode, State, CITIES FROM AREACODES").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	proj := stmts[0].Projection
	if len(proj) != 3 {
		t.Fatalf("expected 3 projection items got %d", len(proj))
	}
	f0 := proj[0].(*ast.FieldRef)
	if f0.Name != "AC" || f0.Alias != "ACode" {
		t.Errorf("unexpected field 0: %#v", f0)
	}
	f1 := proj[1].(*ast.FieldRef)
	if f1.Name != "State" || f1.Alias != "State" {
		t.Errorf("unexpected field 1: %#v", f1)
	}
}

func TestParseQualifiedFieldAndAlias(t *testing.T) {
	stmts, err := New("SELECT t.id AS tid FROM t").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	f := stmts[0].Projection[0].(*ast.FieldRef)
	if f.TableAlias == nil || *f.TableAlias != "t" {
		t.Errorf("expected table alias t, got %#v", f.TableAlias)
	}
	if f.Name != "id" || f.Alias != "tid" {
		t.Errorf("unexpected field: %#v", f)
	}
}

func TestParseMultiTableFrom(t *testing.T) {
	stmts, err := New("SELECT * FROM t1, t2 WHERE t1.id = t2.id").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	stmt := stmts[0]
	if len(stmt.From) != 2 {
		t.Fatalf("expected 2 tables got %d: %#v", len(stmt.From), stmt.From)
	}
	if len(stmt.Where) != 1 {
		t.Fatalf("expected 1 condition got %d", len(stmt.Where))
	}
	eq, ok := stmt.Where[0].(*ast.Equals)
	if !ok {
		t.Fatalf("expected *ast.Equals got %T", stmt.Where[0])
	}
	if got, want := eq.String(), "t1.id = t2.id"; got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestParseJoin(t *testing.T) {
	stmts, err := New("SELECT * FROM t1 LEFT OUTER JOIN t2 ON t1.id = t2.id").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	stmt := stmts[0]
	if len(stmt.From) != 1 {
		t.Fatalf("expected 1 table got %d", len(stmt.From))
	}
	joins := stmt.From[0].Joins
	if len(joins) != 1 {
		t.Fatalf("expected 1 join got %d", len(joins))
	}
	j := joins[0]
	if j.Kind != ast.LeftOuterJoin {
		t.Errorf("expected LeftOuterJoin got %v", j.Kind)
	}
	if j.TableName != "t2" || j.Alias != "t2" {
		t.Errorf("unexpected join table/alias: %#v", j)
	}
	if len(j.On) != 1 {
		t.Fatalf("expected 1 ON condition got %d", len(j.On))
	}
}

func TestParseJoinAliasWithoutAs(t *testing.T) {
	stmts, err := New("SELECT * FROM t1 JOIN t2 x ON t1.id = x.id").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	j := stmts[0].From[0].Joins[0]
	if j.Alias != "x" {
		t.Errorf("expected alias x got %q", j.Alias)
	}
}

func TestParseBetween(t *testing.T) {
	stmts, err := New("SELECT * FROM t WHERE age BETWEEN 18 AND 65").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	b, ok := stmts[0].Where[0].(*ast.Between)
	if !ok {
		t.Fatalf("expected *ast.Between got %T", stmts[0].Where[0])
	}
	if got, want := b.String(), "age BETWEEN 18 AND 65"; got != want {
		t.Errorf("expected %q got %q", want, got)
	}
}

func TestParseBooleanConnectivesFlat(t *testing.T) {
	stmts, err := New("SELECT * FROM t WHERE a = 1 AND b = 2 OR c = 3").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	where := stmts[0].Where
	if len(where) != 5 {
		t.Fatalf("expected 5 flat condition nodes got %d: %#v", len(where), where)
	}
	if _, ok := where[1].(*ast.And); !ok {
		t.Errorf("expected node 1 to be *ast.And got %T", where[1])
	}
	if a := where[1].(*ast.And); a.Child != nil {
		t.Errorf("expected skeleton And with nil child, got %#v", a.Child)
	}
	if _, ok := where[3].(*ast.Or); !ok {
		t.Errorf("expected node 3 to be *ast.Or got %T", where[3])
	}
}

func TestParseNotAndExists(t *testing.T) {
	stmts, err := New("SELECT * FROM t WHERE NOT a = 1 AND EXISTS (SELECT * FROM u)").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	where := stmts[0].Where
	not, ok := where[0].(*ast.Not)
	if !ok {
		t.Fatalf("expected *ast.Not got %T", where[0])
	}
	if _, ok := not.Child.(*ast.Equals); !ok {
		t.Errorf("expected Not.Child to be *ast.Equals got %T", not.Child)
	}
	ex, ok := where[2].(*ast.Exists)
	if !ok {
		t.Fatalf("expected *ast.Exists got %T", where[2])
	}
	if len(ex.Sub.From) != 1 || ex.Sub.From[0].Name != "u" {
		t.Errorf("unexpected subselect: %#v", ex.Sub)
	}
}

// TestParseGroupedCondition exercises the redesigned LPAREN handling: a
// parenthesized sub-condition parses into a real ast.Group instead of
// being discarded.
func TestParseGroupedCondition(t *testing.T) {
	stmts, err := New("SELECT * FROM t WHERE (a = 1 AND b = 2) OR c = 3").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	where := stmts[0].Where
	g, ok := where[0].(*ast.Group)
	if !ok {
		t.Fatalf("expected *ast.Group got %T", where[0])
	}
	if len(g.Conditions) != 3 {
		t.Fatalf("expected 3 nested conditions got %d", len(g.Conditions))
	}
	if _, ok := where[1].(*ast.Or); !ok {
		t.Errorf("expected *ast.Or got %T", where[1])
	}
}

func TestParseDistinct(t *testing.T) {
	stmts, err := New("SELECT DISTINCT State FROM AREACODES").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !stmts[0].Distinct {
		t.Error("expected Distinct=true")
	}
}

func TestParseDistinctAfterFirstPositionFails(t *testing.T) {
	_, err := New("SELECT State, DISTINCT FROM AREACODES").Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !pxerr.Is(err, pxerr.InvalidSQL) {
		t.Fatalf("expected InvalidSQL got %s", err)
	}
}

func TestParseNonSelectFailsUnsupported(t *testing.T) {
	_, err := New("DELETE FROM t").Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !pxerr.Is(err, pxerr.UnsupportedOperation) {
		t.Fatalf("expected UnsupportedOperation got %s", err)
	}
}

func TestParseMissingFromFails(t *testing.T) {
	_, err := New("SELECT *").Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !pxerr.Is(err, pxerr.InvalidSQL) {
		t.Fatalf("expected InvalidSQL got %s", err)
	}
}

func TestParseBareFieldInWhereFails(t *testing.T) {
	_, err := New("SELECT * FROM t WHERE a").Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !pxerr.Is(err, pxerr.InvalidSQL) {
		t.Fatalf("expected InvalidSQL got %s", err)
	}
}

func TestParseEmptyInputFails(t *testing.T) {
	_, err := New("").Parse()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !pxerr.Is(err, pxerr.InvalidSQL) {
		t.Fatalf("expected InvalidSQL got %s", err)
	}
}
