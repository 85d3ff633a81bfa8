package main

import (
	"github.com/civiclens/civiclens/internal/cli"
)

func main() {
	cli.Execute()
}
