// veritype is the command-line interface for the VeriType detection
// service: single-text scoring, batch files, and an embedded HTTP server.
package main

import (
	"os"

	"github.com/veritype/veritype/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
