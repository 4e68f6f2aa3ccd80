package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/goliatone/go-alohomora/internal/cli"
)

func main() {
	cli.Execute()
}
