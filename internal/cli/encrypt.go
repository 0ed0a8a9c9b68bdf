package cli

import (
	"fmt"
	"io"
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
	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

// verifyTolerance bounds the position error accepted after a test decryption.
const verifyTolerance = 1e-3

// cryptFlags are the encryption overrides shared by encrypt and keys.
type cryptFlags struct {
	code      string
	magnitude float32
	targets   int
	keys      []float32
	layout    string
}

func (f *cryptFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.code, "code", "", "encryption code seeding the displacement")
	fs.Float32Var(&f.magnitude, "magnitude", 0, "maximum offset per axis")
	fs.IntVarP(&f.targets, "targets", "n", 0, "number of reconstruction targets (1-32)")
	fs.Float32SliceVarP(&f.keys, "keys", "k", nil, "decryption keys, one per target")
	fs.StringVar(&f.layout, "layout", "", "target layout: chained or shared")
}

// overrides converts the flags the user actually set.
func (f *cryptFlags) overrides(cmd *cobra.Command) config.Flags {
	var out config.Flags
	fs := cmd.Flags()
	if fs.Changed("code") {
		out.Code = &f.code
	}
	if fs.Changed("magnitude") {
		out.Magnitude = &f.magnitude
	}
	if fs.Changed("targets") {
		out.Targets = &f.targets
	}
	out.Keys = f.keys
	out.Layout = f.layout
	return out
}

type encryptOptions struct {
	cryptFlags
	output       string
	outputDir    string
	assetsDir    string
	smooth       bool
	skin         bool
	noCompress   bool
	noAnimations bool
}

func (c *CLI) encryptCommand() *cobra.Command {
	var opts encryptOptions

	cmd := &cobra.Command{
		Use:   "encrypt <in.obj|in.mshx>",
		Short: "Encrypt a mesh and write its decryption animations",
		Long: `Encrypt displaces a mesh and adds one decryption blend shape per key. The
encrypted mesh is written as MSHX; one clip per blend shape and a combined
controller are written to the asset folder.`,
		Example: `  meshveil encrypt statue.obj --code s3cret -k 25,57.9
  meshveil encrypt statue.obj -n 4 --layout shared -o dist/statue.mshx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := opts.overrides(cmd)
			flags.OutputDir = opts.outputDir
			flags.AssetsDir = opts.assetsDir
			if cmd.Flags().Changed("smooth") {
				flags.Smooth = &opts.smooth
			}
			if cmd.Flags().Changed("skin") {
				flags.Skin = &opts.skin
			}
			cfg, err := c.setup(flags)
			if err != nil {
				return err
			}
			return c.runEncrypt(cmd, cfg, args[0], opts)
		},
	}

	opts.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&opts.output, "output", "o", "", "output file (default: <output-dir>/<name>_Encrypted.mshx)")
	fs.StringVar(&opts.outputDir, "output-dir", "", "output directory")
	fs.StringVar(&opts.assetsDir, "assets-dir", "", "animation asset root")
	fs.BoolVar(&opts.smooth, "smooth", false, "weld normals across UV seams")
	fs.BoolVar(&opts.skin, "skin", true, "convert static meshes to skinned meshes")
	fs.BoolVar(&opts.noCompress, "no-compress", false, "write an uncompressed MSHX body")
	fs.BoolVar(&opts.noAnimations, "no-animations", false, "skip writing clips and controller")
	return cmd
}

func (c *CLI) runEncrypt(cmd *cobra.Command, cfg *config.Config, input string, opts encryptOptions) error {
	log := logger.Named("cli")
	out := cmd.OutOrStdout()

	src, err := loadMesh(input, geometry.RecalcOptions{SmoothNormals: cfg.Mesh.SmoothNormals})
	if err != nil {
		return err
	}

	encOpts := encryptor.Options{SmoothNormals: cfg.Mesh.SmoothNormals}
	if cfg.Mesh.ConvertToSkinned {
		root := cfg.Mesh.Root.Transform(src.Name)
		encOpts.Root = &root
	}
	e := encryptor.New(cfg.MeshCrypt(), encOpts, logger.Named("encryptor"))

	res, err := e.Encrypt(src)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", input, err)
	}
	worst, err := encryptor.Verify(src, res.Mesh, res.Weights(), verifyTolerance)
	if err != nil {
		return err
	}
	log.Debug("verified decryption", zap.Float32("max_error", worst))

	path := opts.output
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, res.Mesh.Name+extMSHX)
	}
	if err := writeMSHX(path, res.Mesh, !opts.noCompress); err != nil {
		return err
	}

	printSuccess(out, fmt.Sprintf("encrypted %s with %d targets", src.Name, len(res.Targets)))
	printFile(out, path)

	if !opts.noAnimations {
		db := assets.NewDatabase(cfg.Output.AssetsDir)
		ctrl, err := e.WriteAnimations(db, cfg.Output.Folder, res.Layers)
		if err != nil {
			return err
		}
		printFile(out, filepath.Join(db.Root(), ctrl))
	}

	printTargets(out, e.Config(), res)
	return nil
}

func printTargets(w io.Writer, cfg meshcrypt.Config, res *encryptor.Result) {
	rows := make([][]string, len(res.Layers))
	for i, l := range res.Layers {
		state := "active"
		if l.Standby {
			state = "standby"
		}
		rows[i] = []string{
			l.ShapeName,
			meshcrypt.ParameterName(i),
			formatFloat(l.Key),
			formatFloat(meshcrypt.NormalizeKey(l.Key)),
			state,
		}
	}
	printKeyValue(w, "layout", string(cfg.Layout))
	printTable(w, []string{"Target", "Parameter", "Key", "Value", "Layer"}, rows)
}

func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
