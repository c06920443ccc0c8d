// app is the command-line front end for invoice registration.
//
// Usage:
//
//	app register [file]         register a {"factura": ...} request (stdin when no file)
//	app validate [file]         run every check without writing
//	app show <ruc> <codigo>     print a registered invoice
//	app schema                  print the request JSON Schema
//	app seed seller|buyer <ruc> <name>
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
