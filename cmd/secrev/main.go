package main

import (
	"os"

	"github.com/401-Nick/SecRev/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
