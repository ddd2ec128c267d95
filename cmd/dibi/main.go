package main

import (
	"os"

	"github.com/biyonik/dibi-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
