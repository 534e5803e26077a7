package main

import (
	"github.com/mydehq/lrcfetch/internal/cli"

	// Built-in providers register themselves from init
	_ "github.com/mydehq/lrcfetch/internal/provider/lrclib"
)

func main() {
	cli.Execute()
}
