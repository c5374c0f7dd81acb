package analyzer

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
)

// sample is one pixel as 8-bit RGB in float form
type sample [3]float64

// samplePixels flattens img into RGB samples. Alpha is ignored. When the image
// has more than maxSamples pixels, every stride-th pixel in row-major order
// is taken instead.
func samplePixels(img image.Image, maxSamples int) []sample {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	total := width * height
	if total == 0 {
		return nil
	}

	stride := 1
	if maxSamples > 0 && total > maxSamples {
		stride = (total + maxSamples - 1) / maxSamples
	}

	samples := make([]sample, 0, (total+stride-1)/stride)
	for i := 0; i < total; i += stride {
		x := bounds.Min.X + i%width
		y := bounds.Min.Y + i/width
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		samples = append(samples, sample{float64(c.R), float64(c.G), float64(c.B)})
	}
	return samples
}

// channelStats returns the per-channel mean and standard deviation
func channelStats(samples []sample) (means, stdDevs [3]float64) {
	if len(samples) == 0 {
		return means, stdDevs
	}

	values := make([]float64, len(samples))
	for ch := 0; ch < 3; ch++ {
		for i, s := range samples {
			values[i] = s[ch]
		}
		mean, std := stat.MeanStdDev(values, nil)
		if math.IsNaN(std) {
			std = 0
		}
		means[ch] = mean
		stdDevs[ch] = std
	}
	return means, stdDevs
}

// toRGB rounds a center to the nearest 8-bit color
func toRGB(center sample) [3]int {
	var out [3]int
	for ch, v := range center {
		n := int(math.Round(v))
		if n < 0 {
			n = 0
		} else if n > 255 {
			n = 255
		}
		out[ch] = n
	}
	return out
}
