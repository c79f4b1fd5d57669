package cmd

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/scenekit/internal/plugin"
	"github.com/kiosk404/scenekit/internal/plugin/builtin"
	"github.com/kiosk404/scenekit/internal/scenehost/config"
	"github.com/kiosk404/scenekit/internal/scenehost/options"
)

var pluginsExample = heredoc.Doc(`
	# List the built-in plugins and which slot each one takes
	scenehost plugins

	# Show the effect of swapping the stats slot off
	scenehost plugins --plugins.slots.stats=none`)

// NewCmdPlugins returns the 'plugins' sub command.
func NewCmdPlugins(streams IOStreams, cfgFile *string) *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:                   "plugins",
		DisableFlagsInUseLine: true,
		Short:                 "List the plugins that would be installed",
		Example:               pluginsExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd.Flags(), *cfgFile)
			if err != nil {
				return err
			}
			return listPlugins(streams.Out, cfg)
		},
	}
	opts.PluginOptions.AddFlags(cmd.Flags())
	return cmd
}

// listPlugins prints every registered plugin together with the slot decision
// a scene would make for it.
func listPlugins(out io.Writer, cfg *config.Config) error {
	g, err := cfg.GameConfig().Complete().New()
	if err != nil {
		return err
	}
	reg, err := builtin.NewInTreeRegistry(cfg.PluginOptions, builtin.Deps{
		Controller: g,
		Metrics:    g.Metrics(),
	})
	if err != nil {
		return err
	}
	if err := g.Install(reg); err != nil {
		return err
	}

	infos := g.Plugins().Registry().Definitions()
	if len(infos) == 0 {
		fmt.Fprintln(out, "no plugins enabled")
		return nil
	}

	slots := plugin.SlotConfig(cfg.PluginOptions.SlotConfig())
	active := make(map[string]string)

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("KEY", "SCOPE", "KIND", "MAPPING", "STATUS", "DESCRIPTION")
	for _, info := range infos {
		status := color.GreenString("installed")
		if info.Scope == plugin.ScopeScene {
			if err := plugin.ResolveSlot(info.Definition, active, slots); err != nil {
				status = color.YellowString("skipped")
			} else if info.Kind != "" && info.Kind != "general" {
				active[info.Kind] = info.Key
			}
		}
		table.AddRow(info.Key, string(info.Scope), dash(info.Kind), dash(info.Mapping), status, info.Description)
	}
	_, err = fmt.Fprintln(out, table)
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
