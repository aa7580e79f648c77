package main

import (
	"os"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/cmd"
)

func main() {
	os.Exit(cli.Execute(cmd.NewRootCmd()))
}
