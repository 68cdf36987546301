package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/codec"
	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/generate"

	_ "github.com/gogpu/labelkit/export/backends/raster"
	_ "github.com/gogpu/labelkit/export/backends/svg"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		output      string
		dpi         float64
		transparent bool
	)
	cmd := &cobra.Command{
		Use:   "render SCENE.json",
		Short: "Render a scene to PNG, JPEG, SVG or JSON",
		Example: `  labelkit render label.json -f png -o label.png --multiplier 2
  labelkit render label.json -f svg -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x := a.settings.Export
			format := export.NormalizeFormat(x.Format)
			opts := a.settings.ExportOptions()
			opts.DPI = dpi
			opts.Transparent = transparent
			loader := generate.NewLoader(a.settings.LoaderConfig())
			opts.Images = export.NewImageSource(export.ImageSourceFunc(loader.Load))

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sc, err := codec.Unmarshal(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			var buf bytes.Buffer
			if err := export.Export(cmd.Context(), &buf, sc, format, opts); err != nil {
				return err
			}

			if output == "" {
				output = outputPath(args[0], format)
			}
			if output == "-" {
				_, err = io.Copy(cmd.OutOrStdout(), &buf)
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			labelkit.Logger().Info("rendered", "scene", sc.ID, "format", format, "output", output, "bytes", buf.Len())
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("format", "f", "", "output format: "+strings.Join(export.Formats(), ", "))
	f.StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: scene name with the format extension)`)
	f.Float64P("multiplier", "m", 0, "output scale relative to canvas pixels")
	f.Float64Var(&dpi, "dpi", 0, "output resolution; overrides --multiplier")
	f.IntP("quality", "q", 0, "JPEG quality 1-100")
	f.BoolVar(&transparent, "transparent", false, "omit the background color")
	_ = a.v.BindPFlag("export.format", f.Lookup("format"))
	_ = a.v.BindPFlag("export.multiplier", f.Lookup("multiplier"))
	_ = a.v.BindPFlag("export.quality", f.Lookup("quality"))
	return cmd
}

// outputPath swaps the extension of the scene file for the format's.
func outputPath(scene, format string) string {
	ext := format
	if format == export.FormatJPEG {
		ext = "jpg"
	}
	base := strings.TrimSuffix(scene, filepath.Ext(scene))
	if format == export.FormatJSON {
		base += ".export"
	}
	return base + "." + ext
}
