package main

import (
	"github.com/LENAX/buildsys/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
