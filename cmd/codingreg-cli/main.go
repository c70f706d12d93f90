package main

import (
	"github.com/obdlabs/codingreg/internal/cli"
)

func main() {
	cli.Execute()
}
