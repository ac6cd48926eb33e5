// Command gamevault manages a personal game collection.
package main

import (
	"os"

	"github.com/mesh-intelligence/gamevault/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
