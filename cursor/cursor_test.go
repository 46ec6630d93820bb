package cursor

import (
	"testing"

	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/sqltype"
	"github.com/pxsql/pxsql/value"
)

func areaCodesColumns() []catalog.Column {
	return []catalog.Column{
		{Name: "AC", SQLType: sqltype.VarChar},
		{Name: "State", SQLType: sqltype.VarChar},
		{Name: "CITIES", SQLType: sqltype.VarChar},
	}
}

func areaCodesRows() []value.Row {
	return []value.Row{
		{txt("201"), txt("NJ"), txt("Hackensack, Jersey City (201/551 overlay)")},
		{txt("202"), txt("DC"), txt("Washington")},
		{txt("203"), txt("CT"), txt("Bridgeport, New Haven, Stamford")},
	}
}

func txt(s string) value.FieldValue {
	return value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text(s)}
}

// TestAbsoluteEmpty reproduces ParadoxResultSetTest.testAbsoluteEmpty.
func TestAbsoluteEmpty(t *testing.T) {
	rs := New(areaCodesColumns(), nil)
	ok, err := rs.Absolute(0)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !ok {
		t.Error("expected absolute(0) on an empty result set to succeed")
	}
	if !rs.IsBeforeFirst() {
		t.Error("expected cursor to remain before first")
	}
}

// TestAbsoluteInvalidRow reproduces testAbsoluteInvalidRow.
func TestAbsoluteInvalidRow(t *testing.T) {
	rs := New(areaCodesColumns(), nil)
	ok, _ := rs.Absolute(1)
	if ok {
		t.Error("expected absolute(1) on an empty result set to fail")
	}
	if !rs.IsAfterLast() {
		t.Error("expected cursor to land after last")
	}
}

// TestAbsoluteLowRowValue reproduces testAbsoluteLowRowValue.
func TestAbsoluteLowRowValue(t *testing.T) {
	rs := New(areaCodesColumns(), nil)
	ok, _ := rs.Absolute(-1)
	if ok {
		t.Error("expected absolute(-1) on an empty result set to fail")
	}
	if !rs.IsBeforeFirst() {
		t.Error("expected cursor to remain before first")
	}
}

// TestAbsoluteNegativeRowValue reproduces testAbsoluteNegativeRowValue: on
// a non-empty result set, absolute(-1) lands on the last row.
func TestAbsoluteNegativeRowValue(t *testing.T) {
	rs := New(areaCodesColumns(), areaCodesRows())
	ok, err := rs.Absolute(-1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !ok {
		t.Fatal("expected absolute(-1) to succeed")
	}
	if !rs.IsLast() {
		t.Error("expected cursor to land on the last row")
	}
}

// TestAfterLast reproduces testAfterLast.
func TestAfterLast(t *testing.T) {
	rs := New(areaCodesColumns(), areaCodesRows()[:1])
	if err := rs.AfterLast(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !rs.IsAfterLast() {
		t.Error("expected IsAfterLast to be true")
	}
}

// TestFirstResult reproduces testFirstResult: next/next/first navigates
// back to the first row's AC value.
func TestFirstResult(t *testing.T) {
	rs := New(areaCodesColumns(), areaCodesRows())
	if ok, _ := rs.Next(); !ok {
		t.Fatal("expected first Next to succeed")
	}
	ac0, _ := rs.GetString(0)
	if ok, _ := rs.Next(); !ok {
		t.Fatal("expected second Next to succeed")
	}
	ac1, _ := rs.GetString(0)
	if ac0 == ac1 {
		t.Fatal("expected distinct AC values across rows")
	}
	if ok, _ := rs.First(); !ok {
		t.Fatal("expected First to succeed")
	}
	acAgain, _ := rs.GetString(0)
	if acAgain != ac0 {
		t.Errorf("expected First to return to %q, got %q", ac0, acAgain)
	}
}

// TestNoFirstResult reproduces testNoFirstResult: an empty result set
// fails Next and First alike.
func TestNoFirstResult(t *testing.T) {
	rs := New(areaCodesColumns(), nil)
	if ok, _ := rs.Next(); ok {
		t.Error("expected Next on empty result set to fail")
	}
	if ok, _ := rs.First(); ok {
		t.Error("expected First on empty result set to fail")
	}
}

// TestResultSet reproduces testResultSet: SELECT AC as 'ACode', State,
// CITIES FROM AREACODES's first row.
func TestResultSet(t *testing.T) {
	rs := New(areaCodesColumns(), areaCodesRows())
	ok, err := rs.Next()
	if err != nil || !ok {
		t.Fatalf("expected first row, ok=%v err=%v", ok, err)
	}
	ac, _ := rs.GetString(0)
	state, _ := rs.GetString(1)
	cities, _ := rs.GetString(2)
	if ac != "201" {
		t.Errorf("expected AC=201 got %q", ac)
	}
	if state != "NJ" {
		t.Errorf("expected State=NJ got %q", state)
	}
	if cities != "Hackensack, Jersey City (201/551 overlay)" {
		t.Errorf("unexpected CITIES: %q", cities)
	}
}

func TestGetRowInvariant(t *testing.T) {
	rs := New(areaCodesColumns(), areaCodesRows())
	if rs.GetRow() != 0 {
		t.Errorf("expected GetRow()==0 before positioning, got %d", rs.GetRow())
	}
	rs.Next()
	if rs.GetRow() != 1 {
		t.Errorf("expected GetRow()==1 on first row, got %d", rs.GetRow())
	}
	rs.AfterLast()
	if rs.GetRow() != 0 {
		t.Errorf("expected GetRow()==0 after last, got %d", rs.GetRow())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	rs := New(areaCodesColumns(), areaCodesRows())
	if err := rs.Close(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := rs.Close(); err != nil {
		t.Fatalf("expected repeated Close to be a no-op, got %s", err)
	}
	if _, err := rs.Next(); err == nil {
		t.Error("expected Next on a closed cursor to fail")
	}
}

func TestBeforeFirstThenNextEqualsFirst(t *testing.T) {
	a := New(areaCodesColumns(), areaCodesRows())
	a.BeforeFirst()
	a.Next()
	acA, _ := a.GetString(0)

	b := New(areaCodesColumns(), areaCodesRows())
	b.First()
	acB, _ := b.GetString(0)

	if acA != acB {
		t.Errorf("expected before_first();next() to equal first(), got %q vs %q", acA, acB)
	}
}
