package main

import (
	"os"

	"github.com/adaptlearn/skilltrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
