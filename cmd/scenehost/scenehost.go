package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/scenekit/internal/scenehost/cmd"
)

func main() {
	command := cmd.NewDefaultSceneHostCommand()
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
