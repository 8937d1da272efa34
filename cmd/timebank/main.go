// File path: cmd/timebank/main.go
package main

import (
	"fmt"
	"os"

	"github.com/nicodishanthj/timebank/cmd/timebank/commands"
)

var version = "dev"

func main() {
	commands.SetVersion(version)
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
