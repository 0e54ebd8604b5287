package raster

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// Resize scales a picture to fit Width x Height before it is quantised.
// A zero dimension keeps the source size on that axis. Without Crop the
// aspect ratio is kept by shrinking the destination, or, when Fill is set,
// by centering the picture on a Width x Height background of that colour.
type Resize struct {
	Width  int
	Height int
	Crop   bool
	Fill   color.Color
}

// Apply returns the resized picture, or img itself when no scaling is needed.
func (r *Resize) Apply(logger *slog.Logger, img image.Image) (image.Image, error) {
	if r.Width < 0 || r.Height < 0 {
		return nil, fmt.Errorf("invalid resize dimensions %dx%d", r.Width, r.Height)
	}

	srcBounds := img.Bounds()
	srcWidth := float64(srcBounds.Dx())
	srcHeight := float64(srcBounds.Dy())
	if srcWidth == 0 || srcHeight == 0 {
		return nil, fmt.Errorf("cannot resize empty image")
	}

	destWidth := float64(r.Width)
	if destWidth == 0 {
		destWidth = srcWidth
	}

	destHeight := float64(r.Height)
	if destHeight == 0 {
		destHeight = srcHeight
	}

	if (srcWidth == destWidth) && (srcHeight == destHeight) {
		return img, nil
	}

	destSize := image.Rect(0, 0, int(destWidth), int(destHeight))
	destBounds := destSize

	srcAR := srcWidth / srcHeight
	destAR := destWidth / destHeight
	var fill bool
	if r.Crop {
		if srcAR < destAR {
			dh := int(math.Round((srcHeight - srcWidth/destAR) / 2))
			srcBounds.Min.Y += dh
			srcBounds.Max.Y -= dh
		} else if srcAR > destAR {
			dw := int(math.Round((srcWidth - srcHeight*destAR) / 2))
			srcBounds.Min.X += dw
			srcBounds.Max.X -= dw
		}
	} else {
		if srcAR < destAR {
			dw := destHeight * srcAR
			if r.Fill == nil {
				destSize.Max.X = max(1, int(math.Round(dw)))
				destBounds.Max.X = destSize.Max.X
			} else if fill = destWidth > dw; fill {
				idw := int(math.Round((destWidth - dw) / 2))
				destBounds.Min.X += idw
				destBounds.Max.X -= idw
			}
		} else if srcAR > destAR {
			dh := destWidth / srcAR
			if r.Fill == nil {
				destSize.Max.Y = max(1, int(math.Round(dh)))
				destBounds.Max.Y = destSize.Max.Y
			} else if fill = destHeight > dh; fill {
				idh := int(math.Round((destHeight - dh) / 2))
				destBounds.Min.Y += idh
				destBounds.Max.Y -= idh
			}
		}
	}

	logger.Info("resizing", "width", destSize.Dx(), "height", destSize.Dy())
	dest := image.NewNRGBA(destSize)
	if fill {
		draw.Draw(dest, destSize, image.NewUniform(r.Fill), image.Point{}, draw.Src)
	}
	draw.CatmullRom.Scale(dest, destBounds, img, srcBounds, draw.Over, nil)

	return dest, nil
}
