package main

import (
	"github.com/hllops/seedbank/internal/cli"
)

func main() {
	cli.Execute()
}
