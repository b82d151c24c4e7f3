package main

import (
	"os"

	"github.com/coffersTech/logfilter/cmd/logfilter/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
