// nem12 parses and validates SimpleNEM12 metering files.
package main

import (
	"os"

	"github.com/milad/simplenem12/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
