package main

import (
	"github.com/flanksource/colorize/cmd"
)

func main() {
	cmd.Execute()
}
