package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kiosk404/scenekit/internal/scenehost"
	"github.com/kiosk404/scenekit/internal/scenehost/config"
	"github.com/kiosk404/scenekit/internal/scenehost/options"
	"github.com/kiosk404/scenekit/pkg/logger"
)

var runExample = heredoc.Doc(`
	# Run the scenes described in ./scenehost.yaml until interrupted
	scenehost run

	# Run 600 frames at 30 fps with a custom config file
	scenehost run -c game.yaml --game.fps=30 --game.max-frames=600

	# Run without the journal plugin
	scenehost run --plugins.deny=journal`)

// NewCmdRun returns the 'run' sub command.
func NewCmdRun(streams IOStreams, cfgFile *string) *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:                   "run",
		DisableFlagsInUseLine: true,
		Short:                 "Boot the scenes and run the game loop",
		Example:               runExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGame(ctx, cmd.Flags(), *cfgFile)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func runGame(ctx context.Context, fs *pflag.FlagSet, cfgFile string) error {
	cfg, loader, err := loadConfig(fs, cfgFile)
	if err != nil {
		return err
	}

	if err := logger.SetLevel(cfg.LogOptions.Level); err != nil {
		return err
	}
	if cfg.LogOptions.Path != "" {
		if err := logger.InitLog(cfg.LogOptions.Path); err != nil {
			return err
		}
		defer logger.FlushLog()
	}
	logger.Debug("[Scenehost] options: %s", cfg.String())

	return scenehost.Run(ctx, cfg, loader)
}

// loadConfig reads and validates the options bound to fs.
func loadConfig(fs *pflag.FlagSet, cfgFile string) (*config.Config, *scenehost.Loader, error) {
	loader, err := scenehost.NewLoader(fs)
	if err != nil {
		return nil, nil, err
	}
	opts, err := loader.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	cfg, err := config.CreateConfigFromOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}
