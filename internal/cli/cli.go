// Package cli implements the meshveil command-line interface.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshveil/internal/config"
	"github.com/Faultbox/meshveil/internal/logger"
)

const appName = "meshveil"

// CLI holds state shared by all commands.
type CLI struct {
	out     io.Writer // Command output
	errOut  io.Writer // Console log output
	version string

	configPath string
	debug      bool
}

// New returns a CLI printing results to out and logs to errOut.
func New(out, errOut io.Writer, version string) *CLI {
	return &CLI{out: out, errOut: errOut, version: version}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "meshveil hides mesh geometry behind keyed blend shapes",
		Long: `meshveil displaces every vertex of a mesh by a pseudorandom offset derived
from an encryption code, and stores blend shapes that undo the displacement
when played at their decryption keys.`,
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: ./"+config.FileName+")")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(c.encryptCommand())
	root.AddCommand(c.decryptCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.keysCommand())
	root.AddCommand(c.configCommand())
	return root
}

// setup loads the configuration with flag overrides and initializes logging.
func (c *CLI) setup(flags config.Flags) (*config.Config, error) {
	flags.Debug = flags.Debug || c.debug
	cfg, err := config.Load(c.configPath, flags)
	if err != nil {
		return nil, err
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithWriter(cfg.Logging.Level, fileCfg, c.errOut); err != nil {
		return nil, err
	}
	return cfg, nil
}
