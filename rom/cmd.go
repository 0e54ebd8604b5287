package rom

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/alecthomas/kong"
	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"

	"romgen/parallel"
	"romgen/raster"
	"romgen/vhdl"
)

type GenCmd struct {
	Images     []string    `arg:"" name:"image" help:"Source images"`
	Output     string      `short:"o" help:"Output file. Only valid with a single image; derived from the image name if not given"`
	Entity     string      `help:"Entity name. Only valid with a single image; derived from the image name if not given"`
	Suffix     string      `help:"Suffix appended to the image name to form the entity and output file names" default:"_rom"`
	Ext        string      `help:"Extension of derived output files" default:"vhd"`
	AutoOrient bool        `help:"Apply EXIF orientation before sampling" default:"false"`
	Progress   bool        `help:"Show a progress bar" default:"false"`
	Resize     bool        `help:"Resize image before sampling" default:"false" group:"resize"`
	Width      int         `help:"Max width" group:"resize"`
	Height     int         `help:"Max height" group:"resize"`
	Crop       bool        `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Fill       string      `help:"If given and not cropping, will fill background with this color to reach the exact size" group:"resize"`
	FillColor  color.Color `kong:"-"`
}

func (c *GenCmd) Validate(kctx *kong.Context) error {
	c.Images = lo.Uniq(c.Images)

	if len(c.Images) > 1 {
		if c.Output != "" {
			return fmt.Errorf("--output can only be used with a single image")
		}
		if c.Entity != "" {
			return fmt.Errorf("--entity can only be used with a single image")
		}

		byOutput := lo.GroupBy(c.Images, func(image string) string {
			return OutputPath(filepath.Clean(image), c.Suffix, c.Ext)
		})
		for _, image := range c.Images {
			dest := OutputPath(filepath.Clean(image), c.Suffix, c.Ext)
			if same := byOutput[dest]; len(same) > 1 {
				return fmt.Errorf("images %q would all be written to %q", same, dest)
			}
		}
	}

	if c.Entity != "" && !vhdl.ValidIdentifier(c.Entity) {
		return fmt.Errorf("invalid entity name %q", c.Entity)
	}
	if !vhdl.ValidIdentifier("rom" + c.Suffix) {
		return fmt.Errorf("invalid suffix %q: entity names would not be valid identifiers", c.Suffix)
	}

	if c.Resize {
		switch {
		case (c.Width < 0):
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case (c.Height < 0):
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case (c.Width == 0) && (c.Height == 0):
			return fmt.Errorf("no resize dimensions given")
		}

		if (!c.Crop) && (c.Fill != "") {
			var err error
			if c.FillColor, err = parseHexToColor(c.Fill); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *GenCmd) generator() *Generator {
	opts := []Option{
		WithNaming(c.Suffix, c.Ext),
		WithAutoOrient(c.AutoOrient),
	}
	if c.Entity != "" {
		opts = append(opts, WithEntity(c.Entity))
	}
	if c.Resize {
		opts = append(opts, WithResize(&raster.Resize{
			Width:  c.Width,
			Height: c.Height,
			Crop:   c.Crop,
			Fill:   c.FillColor,
		}))
	}
	return New(opts...)
}

func (c *GenCmd) Run(pool *parallel.Pool) error {
	gen := c.generator()

	var bar *progressbar.ProgressBar
	if c.Progress {
		bar = progressbar.NewOptions(len(c.Images),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("generating"),
			progressbar.OptionShowCount(),
		)
	}

	var writtenCount, errCount atomic.Uint64
	for _, image := range c.Images {
		pool.Go(func() error {
			if bar != nil {
				defer func() { _ = bar.Add(1) }()
			}

			if _, err := gen.Generate(image, c.Output); err != nil {
				errCount.Add(1)
				slog.Error("could not generate rom", "file", image, "error", err)
				return err
			}
			writtenCount.Add(1)
			return nil
		})
	}

	err := pool.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	written := writtenCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "written", written, "errors", errors, "total", written+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files: %w", errors, err)
	}
	return nil
}

type InfoCmd struct {
	Images     []string `arg:"" name:"image" help:"Source images"`
	AutoOrient bool     `help:"Apply EXIF orientation before sampling" default:"false"`
}

func (c *InfoCmd) Run(pool *parallel.Pool) error {
	gen := New(WithAutoOrient(c.AutoOrient))

	var errCount atomic.Uint64
	for _, image := range lo.Uniq(c.Images) {
		pool.Go(func() error {
			img, plan, err := gen.Inspect(image)
			if err != nil {
				errCount.Add(1)
				slog.Error("could not inspect image", "file", image, "error", err)
				return err
			}

			slog.Info("image", "file", image,
				"width", img.Width, "height", img.Height,
				"row_bits", plan.RowBits, "col_bits", plan.ColBits, "addr_bits", plan.AddrBits(),
				"entries", plan.Entries()+1,
				"table", bytesize.New(float64(vhdl.TableSize(plan))).String(),
				"output", OutputPath(image, DefaultSuffix, DefaultExt),
				"entity", EntityName(image, DefaultSuffix))
			return nil
		})
	}

	if err := pool.Wait(); err != nil {
		return fmt.Errorf("error processing %d files: %w", errCount.Load(), err)
	}
	return nil
}
