// Command pouch keeps notes in two zones backed by SQLite.
package main

import (
	"os"

	"github.com/mesh-intelligence/pouch/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
