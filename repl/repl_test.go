package repl

import "testing"

func cell(s string) *string {
	return &s
}

// TestPrint renders a small AREACODES-shaped result set and checks the
// padded-column table, including a NULL cell in the last row.
func TestPrint(t *testing.T) {
	r := New(nil)
	columnNames := []string{"AC", "State"}
	rows := [][]*string{
		{cell("201"), cell("NJ")},
		{cell("202"), cell("DC")},
		{cell("203"), cell("Connecticut")},
		{cell("204"), nil},
	}
	got := r.printRows(columnNames, rows)
	want := "" +
		" AC  | State       \n" +
		"-----+-------------\n" +
		" 201 | NJ          \n" +
		" 202 | DC          \n" +
		" 203 | Connecticut \n" +
		" 204 | NULL        \n"
	if got != want {
		t.Errorf("\nwant\n%s\ngot\n%s\n", want, got)
	}
}

func TestPrintEmptyResult(t *testing.T) {
	r := New(nil)
	result := r.printRows([]string{"AC"}, nil)
	if result == "" {
		t.Fatal("expected non-empty output")
	}
	want := " AC \n----\n(0 rows)\n"
	if result != want {
		t.Errorf("\nwant\n%s\ngot\n%s\n", want, result)
	}
}

func TestIsTerminated(t *testing.T) {
	if isTerminated("SELECT * FROM t") {
		t.Error("expected an unterminated statement")
	}
	if !isTerminated("SELECT * FROM t;") {
		t.Error("expected a terminated statement")
	}
	if !isTerminated("SELECT * FROM t ;  ") {
		t.Error("expected trailing whitespace after the semicolon to still count as terminated")
	}
}
