package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/internal/config"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the user config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.UserPath(c.env)
			if path == "" {
				return fmt.Errorf("cannot determine config directory (set XDG_CONFIG_HOME or HOME)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the effective configuration as TOML, after merging the user config
file, --config and PLANBOARD_* environment variables over the defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range []string{c.Config.Sources.User, c.Config.Sources.Explicit} {
				if path != "" {
					fmt.Fprintln(cmd.OutOrStdout(), StyleDim.Render("# "+path))
				}
			}
			return c.Config.Encode(cmd.OutOrStdout())
		},
	})

	return cmd
}
