package main

import (
	"fmt"
	"os"

	"github.com/jmichard/tourneyhub/cmd/cli/root"

	_ "github.com/jmichard/tourneyhub/cmd/cli/auth"
	_ "github.com/jmichard/tourneyhub/cmd/cli/tournaments"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
