package main

import (
	"os"

	"github.com/GriffinCanCode/framerelay/cmd/relayd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
