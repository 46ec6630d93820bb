package memcatalog

import (
	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/sqltype"
	"github.com/pxsql/pxsql/value"
)

// AreaCodes returns the AREACODES table fixture named in spec.md §8
// boundary scenario #12: AC, State, CITIES columns, first row
// 201/NJ/"Hackensack, Jersey City (201/551 overlay)".
func AreaCodes() *Table {
	columns := []catalog.Column{
		{Name: "AC", SQLType: sqltype.VarChar},
		{Name: "State", SQLType: sqltype.VarChar},
		{Name: "CITIES", SQLType: sqltype.VarChar},
	}
	rows := []value.Row{
		{
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("201")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("NJ")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("Hackensack, Jersey City (201/551 overlay)")},
		},
		{
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("202")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("DC")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("Washington")},
		},
		{
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("203")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("CT")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("Bridgeport, New Haven, Stamford")},
		},
	}
	return NewTable("AREACODES", columns, rows)
}

// Demo returns a Catalog seeded with the fixtures used by the REPL's
// --demo flag and by tests that need more than one table, e.g. to exercise
// joins and ambiguous-column resolution.
func Demo() *Catalog {
	c := New().AddTable(AreaCodes())
	c.AddTable(NewTable("STATES", []catalog.Column{
		{Name: "State", SQLType: sqltype.VarChar},
		{Name: "Name", SQLType: sqltype.VarChar},
	}, []value.Row{
		{
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("NJ")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("New Jersey")},
		},
		{
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("DC")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("District of Columbia")},
		},
		{
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("CT")},
			value.FieldValue{SQLType: sqltype.VarChar, Raw: value.Text("Connecticut")},
		},
	}))
	return c
}
