package transform

import (
	"image"

	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// ImageNet per-channel statistics (RGB). Pretrained backbones expect inputs
// normalized with exactly these values.
var (
	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Converter turns batches of decoded images into normalized, channels-first
// float32 tensors. It replaces the ToTensor+Normalize tail of the transform
// pipelines: channel values are scaled to [0, 1] and then normalized with the
// configured per-channel mean and standard deviation.
type Converter struct {
	mean, std [3]float32
}

// NewConverter returns a Converter with the ImageNet statistics.
func NewConverter() *Converter {
	return &Converter{mean: ImageNetMean, std: ImageNetStd}
}

// WithStats overrides the normalization statistics. It returns the Converter
// so calls can be chained.
func (c *Converter) WithStats(mean, std [3]float32) *Converter {
	c.mean = mean
	c.std = std
	return c
}

// Batch converts images, which must all have the same dimensions, to a tensor
// shaped [batch, 3, height, width]. The alpha channel is dropped.
func (c *Converter) Batch(images []image.Image) (*tensors.Tensor, error) {
	if len(images) == 0 {
		return nil, errors.Errorf("cannot convert an empty batch of images")
	}
	first := images[0].Bounds()
	width, height := first.Dx(), first.Dy()
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, errors.Errorf(
				"image #%d is %dx%d but the batch expects %dx%d: transform pipelines must crop to a fixed size",
				i, b.Dx(), b.Dy(), width, height)
		}
	}

	t := tensors.FromShape(shapes.Make(dtypes.Float32, len(images), 3, height, width))
	t.MutableFlatData(func(flatAny any) {
		data := flatAny.([]float32)
		planeSize := height * width
		for imgIdx, img := range images {
			base := imgIdx * 3 * planeSize
			b := img.Bounds()
			pos := 0
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
					channels := [3]float32{
						float32(r >> 8),
						float32(g >> 8),
						float32(bl >> 8),
					}
					for ch := 0; ch < 3; ch++ {
						data[base+ch*planeSize+pos] = (channels[ch]/255.0 - c.mean[ch]) / c.std[ch]
					}
					pos++
				}
			}
		}
	})
	return t, nil
}
