package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Faultbox/meshveil/internal/config"
	"github.com/Faultbox/meshveil/internal/geometry"
	"github.com/Faultbox/meshveil/pkg/formats"
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <in.mshx>",
		Short: "Show mesh, blend shape and skinning information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.setup(config.Flags{}); err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			x, err := formats.ParseMSHX(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			m, err := geometry.FromMSHX(x)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printTitle(w, m.Name)
			printKeyValue(w, "file", fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(len(data)))))
			printKeyValue(w, "version", x.Version.String())
			printKeyValue(w, "vertices", humanize.Comma(int64(m.VertexCount())))
			printKeyValue(w, "triangles", humanize.Comma(int64(len(m.Indices)/3)))
			printKeyValue(w, "bounds", fmt.Sprintf("%v .. %v", m.Bounds.Min, m.Bounds.Max))
			printKeyValue(w, "uvs", strconv.FormatBool(m.UVs != nil))
			printKeyValue(w, "tangents", strconv.FormatBool(m.Tangents != nil))
			if m.IsSkinned() {
				printKeyValue(w, "skin", fmt.Sprintf("root %s, %d bones", m.Skin.RootBone, len(m.Skin.Bones)))
			} else {
				printKeyValue(w, "skin", "none")
			}
			printKeyValue(w, "next shape", m.NextShapeName())

			if len(m.BlendShapes) == 0 {
				return nil
			}
			rows := make([][]string, len(m.BlendShapes))
			for i, bs := range m.BlendShapes {
				var reach float32
				for _, d := range bs.PositionDeltas {
					reach = max(reach, d.Length())
				}
				rows[i] = []string{bs.Name, formatFloat(bs.FrameWeight), strconv.FormatFloat(float64(reach), 'g', 4, 32)}
			}
			printTable(w, []string{"Blend shape", "Frame weight", "Max delta"}, rows)
			return nil
		},
	}
}
