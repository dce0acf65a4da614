package main

import (
	"os"

	"github.com/funvibe/langkit/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
