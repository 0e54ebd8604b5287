// Package rom turns pictures into VHDL ROM files.
//
// A Generator runs the whole pipeline for one picture: decode, plan the
// address bus, emit the lookup table. The document is written to a temporary
// file next to the destination and renamed into place only once it is
// complete, so a failed run never leaves a partial ROM behind.
package rom

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/spf13/afero"

	"romgen/addr"
	"romgen/raster"
	"romgen/vhdl"
)

const (
	DefaultSuffix = "_rom"
	DefaultExt    = "vhd"

	outputMode = 0o644
)

// WriteError reports a ROM file that could not be created or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("could not write rom %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Result describes a generated ROM.
type Result struct {
	Input  string
	Output string
	Entity string
	Plan   addr.Plan
	// Entries counts the case branches, including the others branch.
	Entries int
	Size    int64
}

type Generator struct {
	fs         afero.Fs
	logger     *slog.Logger
	entity     string
	suffix     string
	ext        string
	autoOrient bool
	resize     *raster.Resize
}

type Option func(g *Generator)

func WithFs(fs afero.Fs) Option {
	return func(g *Generator) {
		g.fs = fs
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithEntity fixes the entity name instead of deriving it from the picture.
func WithEntity(name string) Option {
	return func(g *Generator) {
		g.entity = name
	}
}

// WithNaming sets the suffix added to the picture name and the extension of
// derived output files.
func WithNaming(suffix, ext string) Option {
	return func(g *Generator) {
		g.suffix = suffix
		g.ext = ext
	}
}

func WithAutoOrient(enable bool) Option {
	return func(g *Generator) {
		g.autoOrient = enable
	}
}

func WithResize(r *raster.Resize) Option {
	return func(g *Generator) {
		g.resize = r
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
		suffix: DefaultSuffix,
		ext:    DefaultExt,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate writes the ROM for imagePath to outputPath using the operating
// system's filesystem. An empty outputPath is derived from imagePath.
func Generate(imagePath, outputPath string) error {
	_, err := New().Generate(imagePath, outputPath)
	return err
}

// OutputPath strips the final extension of imagePath and appends suffix and
// ext: "art/brick.bmp" becomes "art/brick_rom.vhd".
func OutputPath(imagePath, suffix, ext string) string {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	if ext == "" {
		return base + suffix
	}
	return base + suffix + "." + ext
}

// EntityName derives the entity name from the file name of imagePath.
func EntityName(imagePath, suffix string) string {
	name := filepath.Base(imagePath)
	return vhdl.Identifier(strings.TrimSuffix(name, filepath.Ext(name))) + suffix
}

// Inspect loads imagePath and plans its address bus without writing anything.
func (g *Generator) Inspect(imagePath string) (*raster.Image, addr.Plan, error) {
	logger := g.logger.With("file", imagePath)

	img, err := raster.Load(g.fs, imagePath, raster.LoadOptions{
		AutoOrient: g.autoOrient,
		Resize:     g.resize,
		Logger:     logger,
	})
	if err != nil {
		return nil, addr.Plan{}, err
	}

	plan, err := addr.New(img.Height, img.Width)
	if err != nil {
		return nil, addr.Plan{}, fmt.Errorf("could not plan addresses for %q: %w", imagePath, err)
	}
	logger.Debug("address plan", "row_bits", plan.RowBits, "col_bits", plan.ColBits, "addr_bits", plan.AddrBits())

	return img, plan, nil
}

// Generate writes the ROM for imagePath to outputPath, or to the derived
// path when outputPath is empty. Errors are *raster.LoadError,
// *addr.InvalidDimensionError or *WriteError, possibly wrapped.
func (g *Generator) Generate(imagePath, outputPath string) (*Result, error) {
	img, plan, err := g.Inspect(imagePath)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Input:   imagePath,
		Output:  outputPath,
		Entity:  g.entity,
		Plan:    plan,
		Entries: plan.Entries() + 1,
	}
	if res.Output == "" {
		res.Output = OutputPath(imagePath, g.suffix, g.ext)
	}
	if res.Entity == "" {
		res.Entity = EntityName(imagePath, g.suffix)
	}
	if !vhdl.ValidIdentifier(res.Entity) {
		return nil, fmt.Errorf("invalid entity name %q for %q", res.Entity, imagePath)
	}

	res.Size, err = g.write(res.Output, &vhdl.ROM{
		Entity: res.Entity,
		Plan:   plan,
		Source: img,
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("rom written", "file", imagePath, "output", res.Output, "entity", res.Entity,
		"entries", res.Entries, "size", bytesize.New(float64(res.Size)).String())
	return res, nil
}

func (g *Generator) write(dest string, rom *vhdl.ROM) (size int64, err error) {
	tmp, err := afero.TempFile(g.fs, filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return 0, &WriteError{Path: dest, Err: fmt.Errorf("could not create temporary file: %w", err)}
	}
	tmpName := tmp.Name()

	closed, renamed := false, false
	defer func() {
		if !closed {
			if closeErr := tmp.Close(); closeErr != nil {
				g.logger.Error("could not close temporary file", "name", tmpName, "error", closeErr)
			}
		}
		if !renamed {
			if rmErr := g.fs.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				g.logger.Error("could not remove temporary file", "name", tmpName, "error", rmErr)
			}
		}
	}()

	if err = vhdl.Encode(tmp, rom); err != nil {
		return 0, &WriteError{Path: dest, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return 0, &WriteError{Path: dest, Err: fmt.Errorf("could not flush temporary file: %w", err)}
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return 0, &WriteError{Path: dest, Err: fmt.Errorf("could not close temporary file: %w", err)}
	}

	info, err := g.fs.Stat(tmpName)
	if err != nil {
		return 0, &WriteError{Path: dest, Err: fmt.Errorf("could not stat temporary file: %w", err)}
	}

	if err = g.fs.Chmod(tmpName, outputMode); err != nil {
		return 0, &WriteError{Path: dest, Err: fmt.Errorf("could not set mode of temporary file: %w", err)}
	}

	if err = g.fs.Rename(tmpName, dest); err != nil {
		return 0, &WriteError{Path: dest, Err: fmt.Errorf("could not rename temporary file: %w", err)}
	}
	renamed = true

	return info.Size(), nil
}
