package cli

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/meshveil/internal/config"
)

func (c *CLI) configCommand() *cobra.Command {
	var (
		flags  cryptFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration to a YAML file",
		Long: `Config merges the defaults, the config file and the given flags, and writes
the result so it can be edited and passed back with --config.`,
		Example: `  meshveil config --code s3cret -k 25,57.9 -o meshveil.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.setup(flags.overrides(cmd))
			if err != nil {
				return err
			}
			if err := cfg.MeshCrypt().Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(output); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, "wrote config")
			printFile(w, output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", config.FileName, "config file to write")
	return cmd
}
