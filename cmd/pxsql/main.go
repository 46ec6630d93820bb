// pxsql is an interactive client for the read-only Paradox query engine.
package main

import (
	"flag"
	"log"

	"github.com/pxsql/pxsql/catalog"
	"github.com/pxsql/pxsql/engine"
	"github.com/pxsql/pxsql/memcatalog"
	"github.com/pxsql/pxsql/repl"
)

func main() {
	demo := flag.Bool("demo", true, "use the built-in AREACODES/STATES demo catalog")
	dir := flag.String("dir", "", "path to a directory of Paradox table files (not yet implemented; the binary decoder and directory walker are out of scope)")
	flag.Parse()

	var adapter catalog.Adapter
	switch {
	case *dir != "":
		log.Fatalf("pxsql: -dir is not supported yet; no catalog.Adapter decodes Paradox files from %q", *dir)
	case *demo:
		adapter = memcatalog.Demo()
	default:
		log.Fatal("pxsql: no catalog selected; pass -demo or -dir")
	}

	repl.New(engine.New(adapter)).Run()
}
