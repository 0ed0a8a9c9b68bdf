package cli

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

func (c *CLI) keysCommand() *cobra.Command {
	var (
		flags cryptFlags
		first int
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Show the target names, keys and parameters an encryption would produce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.setup(flags.overrides(cmd))
			if err != nil {
				return err
			}
			mc := cfg.MeshCrypt()
			if err := mc.Validate(); err != nil {
				return err
			}

			rows := make([][]string, len(mc.Keys))
			for i, k := range mc.Keys {
				rows[i] = []string{
					meshcrypt.TargetName(first + i),
					meshcrypt.ParameterName(i),
					formatFloat(k),
					formatFloat(meshcrypt.NormalizeKey(k)),
				}
			}

			w := cmd.OutOrStdout()
			printKeyValue(w, "code", mc.Code)
			printKeyValue(w, "magnitude", formatFloat(mc.Magnitude))
			printKeyValue(w, "layout", string(mc.Layout))
			printTable(w, []string{"Target", "Parameter", "Key", "Value"}, rows)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&first, "first", 0, "index of the first target name")
	return cmd
}
