package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// FlagConfig names the persistent flag pointing at a config file.
const FlagConfig = "config"

// IOStreams are the standard streams a command writes to.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// NewDefaultSceneHostCommand creates the `scenehost` command with default arguments.
func NewDefaultSceneHostCommand() *cobra.Command {
	return NewSceneHostCommand(IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr})
}

// NewSceneHostCommand creates the `scenehost` command writing to streams.
func NewSceneHostCommand(streams IOStreams) *cobra.Command {
	var cfgFile string

	cmds := &cobra.Command{
		Use:   "scenehost",
		Short: "scenehost runs scenes with their lifecycle plugins",
		Long: fmt.Sprintf("%s\n%s", Banner(), heredoc.Doc(`
			scenehost boots a set of scenes, installs the built-in scene plugins
			into each of them and drives the game loop.

			Every scene plugin is attached when its scene initialises and hooks
			the scene's lifecycle notifications once the scene boots. The
			journal plugin records those notifications, framestats exports frame
			metrics and the inspector serves an HTTP API over the running scenes.
		`)),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmds.SetIn(streams.In)
	cmds.SetOut(streams.Out)
	cmds.SetErr(streams.ErrOut)

	cmds.PersistentFlags().StringVarP(&cfgFile, FlagConfig, "c", "",
		"Path to the config file (default .scenekit/scenehost.yaml or ./scenehost.yaml).")

	cmds.AddCommand(
		NewCmdRun(streams, &cfgFile),
		NewCmdPlugins(streams, &cfgFile),
	)
	return cmds
}
