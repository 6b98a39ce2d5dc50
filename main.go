package main

import (
	"github.com/pvlink/pvlink/cmd"

	// Subcommands register themselves on the root command via init().
	_ "github.com/pvlink/pvlink/cmd/cli"
	_ "github.com/pvlink/pvlink/cmd/server"
)

func main() {
	cmd.Execute()
}
