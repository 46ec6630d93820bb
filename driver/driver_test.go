package driver_test

import (
	"database/sql"
	"testing"

	"github.com/pxsql/pxsql/driver"
	"github.com/pxsql/pxsql/memcatalog"
)

func TestOpenDemoAndQuery(t *testing.T) {
	db, err := sql.Open("paradox", "demo")
	if err != nil {
		t.Fatalf("open err %s", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT AC, State FROM AREACODES WHERE State = 'NJ'")
	if err != nil {
		t.Fatalf("query err %s", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var ac, state string
		if err := rows.Scan(&ac, &state); err != nil {
			t.Fatalf("scan err %s", err)
		}
		if ac != "201" || state != "NJ" {
			t.Errorf("unexpected row: ac=%q state=%q", ac, state)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row got %d", count)
	}
}

func TestOpenAdapter(t *testing.T) {
	db := driver.OpenAdapter(memcatalog.Demo())
	defer db.Close()

	var name string
	if err := db.QueryRow("SELECT Name FROM STATES WHERE State = 'DC'").Scan(&name); err != nil {
		t.Fatalf("query err %s", err)
	}
	if name != "District of Columbia" {
		t.Fatalf("expected District of Columbia got %s", name)
	}
}

func TestUnknownCatalogNameFails(t *testing.T) {
	db, err := sql.Open("paradox", "nope")
	if err != nil {
		t.Fatalf("open err %s", err)
	}
	defer db.Close()
	if _, err := db.Query("SELECT * FROM AREACODES"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestExecFails(t *testing.T) {
	db := driver.OpenAdapter(memcatalog.Demo())
	defer db.Close()
	if _, err := db.Exec("SELECT * FROM AREACODES"); err == nil {
		t.Fatal("expected Exec to fail on a read-only engine")
	}
}
