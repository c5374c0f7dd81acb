package analyzer

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	apperrors "go-image-reader/internal/errors"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeFile opens and fully decodes the image at path
func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// decodeBoundedFile decodes the image at path after checking that its header
// declares at most maxPixels pixels. maxPixels <= 0 disables the check.
func decodeBoundedFile(path string, maxPixels int64) (image.Image, string, error) {
	if maxPixels > 0 {
		cfg, _, err := decodeConfigFile(path)
		if err != nil {
			return nil, "", err
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
			return nil, "", apperrors.NewProcessingError(
				fmt.Sprintf("image is %dx%d (%d pixels), above the %d pixel limit", cfg.Width, cfg.Height, pixels, maxPixels), nil)
		}
	}
	return decodeFile(path)
}

// decodeConfigFile reads only the image header
func decodeConfigFile(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode image header: %w", err)
	}
	return cfg, format, nil
}

// formatName returns the conventional upper-case name of a decoder format
func formatName(format string) string {
	return strings.ToUpper(format)
}

// describeModel maps a color model to a mode name and channel count
func describeModel(model color.Model) (mode string, channels int) {
	if palette, ok := model.(color.Palette); ok {
		for _, c := range palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return "P", 4
			}
		}
		return "P", 3
	}

	switch model {
	case color.GrayModel:
		return "L", 1
	case color.Gray16Model:
		return "I;16", 1
	case color.AlphaModel, color.Alpha16Model:
		return "A", 1
	case color.RGBAModel, color.RGBA64Model, color.YCbCrModel:
		return "RGB", 3
	case color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel:
		return "RGBA", 4
	case color.CMYKModel:
		return "CMYK", 4
	default:
		return "unknown", 3
	}
}
