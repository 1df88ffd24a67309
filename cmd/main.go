package main

import (
	"tabview.dev/cli/internal/interfaces/cli"
)

// Overridden by ldflags at release build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	container := cli.NewContainer()
	cli.Execute(container, version, commit, date)
}
