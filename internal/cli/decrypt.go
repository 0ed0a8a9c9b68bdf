package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshveil/internal/assets"
	"github.com/Faultbox/meshveil/internal/config"
	"github.com/Faultbox/meshveil/internal/encryptor"
	"github.com/Faultbox/meshveil/internal/geometry"
	"github.com/Faultbox/meshveil/internal/logger"
)

type decryptOptions struct {
	controller string
	assetsDir  string
	weights    map[string]string
	output     string
}

func (c *CLI) decryptCommand() *cobra.Command {
	var opts decryptOptions

	cmd := &cobra.Command{
		Use:   "decrypt <in.mshx>",
		Short: "Play decryption blend shapes and write the restored mesh",
		Long: `Decrypt evaluates the blend shape weights set by a decryption controller, or
given explicitly with --weight, and writes the resulting mesh as OBJ.`,
		Example: `  meshveil decrypt statue_Encrypted.mshx
  meshveil decrypt statue_Encrypted.mshx --controller Assets/DecryptionAnimations/CombinedDecryptionAnimator.controller
  meshveil decrypt statue_Encrypted.mshx -w Decrypt0=25 -o statue.obj`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.setup(config.Flags{AssetsDir: opts.assetsDir})
			if err != nil {
				return err
			}

			m, err := loadMesh(args[0], geometry.RecalcOptions{})
			if err != nil {
				return err
			}

			weights, err := parseWeights(opts.weights)
			if err != nil {
				return err
			}
			if weights == nil {
				ctrl := opts.controller
				if ctrl == "" {
					ctrl = filepath.Join(cfg.Output.AssetsDir, assets.ControllerPath(cfg.Output.Folder))
				}
				db := assets.NewDatabase(filepath.Dir(ctrl))
				if weights, err = encryptor.ControllerWeights(db, filepath.Base(ctrl)); err != nil {
					return fmt.Errorf("reading controller: %w", err)
				}
			}
			logger.Named("cli").Debug("decrypting", zap.String("mesh", m.Name), zap.Any("weights", weights))

			out, err := encryptor.Decrypt(m, weights)
			if err != nil {
				return err
			}
			out.Name = strings.TrimSuffix(m.Name, encryptor.EncryptedSuffix)

			path := opts.output
			if path == "" {
				path = filepath.Join(cfg.Output.Dir, out.Name+extOBJ)
			}
			if err := writeOBJ(path, out); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printSuccess(w, fmt.Sprintf("decrypted %s with %d blend shapes", m.Name, len(weights)))
			printFile(w, path)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.controller, "controller", "", "decryption controller (default: <assets-dir>/<folder>/"+assets.ControllerFile+")")
	fs.StringVar(&opts.assetsDir, "assets-dir", "", "animation asset root")
	fs.StringToStringVarP(&opts.weights, "weight", "w", nil, "explicit blend shape weight, e.g. Decrypt0=25")
	fs.StringVarP(&opts.output, "output", "o", "", "output OBJ file (default: <output-dir>/<name>.obj)")
	return cmd
}

// parseWeights converts name=value pairs. An empty map yields nil.
func parseWeights(raw map[string]string) (map[string]float32, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	weights := make(map[string]float32, len(raw))
	for name, v := range raw {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return nil, fmt.Errorf("weight %s: %w", name, err)
		}
		weights[name] = float32(f)
	}
	return weights, nil
}
