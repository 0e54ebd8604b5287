package raster

import (
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadError reports a picture that could not be opened or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load image %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadOptions tune how a picture is turned into a grid.
type LoadOptions struct {
	// AutoOrient applies the EXIF orientation tag, if any.
	AutoOrient bool
	// Resize, when set, is applied after decoding.
	Resize *Resize
	Logger *slog.Logger
}

// Load decodes the picture at path on fs. Any failure is a *LoadError and
// no grid is returned.
func Load(fs afero.Fs, path string, opts LoadOptions) (*Image, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Error("could not close image", "file", path, "error", closeErr)
		}
	}()

	img, err := imaging.Decode(f, imaging.AutoOrientation(opts.AutoOrient))
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("could not decode: %w", err)}
	}

	if opts.Resize != nil {
		if img, err = opts.Resize.Apply(logger, img); err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("could not resize: %w", err)}
		}
	}

	m := FromImage(img)
	logger.Info("image loaded", "width", m.Width, "height", m.Height)
	return m, nil
}
