package main

import (
	"github.com/dkeye/Video/cmd/client/cmd"
)

func main() {
	cmd.Execute()
}
