// Package transform composes the image preprocessing pipelines applied to
// dataset examples before they are converted to tensors.
//
// A Pipeline is an ordered list of Transform steps. The training pipeline
// augments images with random rotation, a random resized crop and a random
// horizontal flip; the evaluation pipeline (shared by the validation and test
// splits) deterministically resizes and center-crops. Both produce
// CropSize x CropSize images, ready for Converter.Batch.
package transform

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
)

// Transform is a single image preprocessing step. Randomized transforms draw
// from rng on every Apply, so augmentation is re-sampled independently for
// each image on each access; deterministic transforms ignore rng.
type Transform interface {
	Name() string
	Apply(img image.Image, rng *rand.Rand) image.Image
}

// Pipeline applies its transforms in order.
type Pipeline []Transform

func (p Pipeline) Apply(img image.Image, rng *rand.Rand) image.Image {
	for _, t := range p {
		img = t.Apply(img, rng)
	}
	return img
}

// Names returns the name of each step, in order. Used for logging and tests.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, t := range p {
		names[i] = t.Name()
	}
	return names
}

const (
	// CropSize is the side of the square images fed to the classifier.
	CropSize = 224

	// EvalResizeSize is the shortest-side target of the evaluation resize,
	// before center-cropping to CropSize.
	EvalResizeSize = 256

	maxRotationDegrees = 30.0
	horizontalFlipProb = 0.5
)

// Training returns the augmentation pipeline used for the training split.
func Training() Pipeline {
	return Pipeline{
		RandomRotation(maxRotationDegrees),
		RandomResizedCrop(CropSize),
		RandomHorizontalFlip(horizontalFlipProb),
	}
}

// Evaluation returns the deterministic pipeline used for the validation and
// test splits.
func Evaluation() Pipeline {
	return Pipeline{
		Resize(EvalResizeSize),
		CenterCrop(CropSize),
	}
}

type randomRotation struct {
	maxDegrees float64
}

// RandomRotation rotates by a uniformly random angle in
// [-maxDegrees, +maxDegrees], filling the exposed corners with opaque black.
func RandomRotation(maxDegrees float64) Transform {
	return randomRotation{maxDegrees: maxDegrees}
}

func (t randomRotation) Name() string {
	return fmt.Sprintf("RandomRotation(%g)", t.maxDegrees)
}

func (t randomRotation) Apply(img image.Image, rng *rand.Rand) image.Image {
	angle := (rng.Float64()*2 - 1) * t.maxDegrees
	return imaging.Rotate(img, angle, color.RGBA{A: 0xFF})
}

type randomResizedCrop struct {
	size int
}

// RandomResizedCrop crops a random region covering between 8% and 100% of
// the image area, with aspect ratio between 3/4 and 4/3, and resizes it to
// size x size. After 10 failed attempts to sample a region that fits, it
// falls back to a centered square crop.
func RandomResizedCrop(size int) Transform {
	return randomResizedCrop{size: size}
}

func (t randomResizedCrop) Name() string {
	return fmt.Sprintf("RandomResizedCrop(%d)", t.size)
}

const (
	cropMinAreaFraction = 0.08
	cropMaxAttempts     = 10
)

func (t randomResizedCrop) Apply(img image.Image, rng *rand.Rand) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	area := float64(width * height)

	logMinRatio := math.Log(3.0 / 4.0)
	logMaxRatio := math.Log(4.0 / 3.0)
	for attempt := 0; attempt < cropMaxAttempts; attempt++ {
		targetArea := area * (cropMinAreaFraction + rng.Float64()*(1-cropMinAreaFraction))
		ratio := math.Exp(logMinRatio + rng.Float64()*(logMaxRatio-logMinRatio))
		cropWidth := int(math.Round(math.Sqrt(targetArea * ratio)))
		cropHeight := int(math.Round(math.Sqrt(targetArea / ratio)))
		if cropWidth <= 0 || cropHeight <= 0 || cropWidth > width || cropHeight > height {
			continue
		}
		x0 := bounds.Min.X + rng.Intn(width-cropWidth+1)
		y0 := bounds.Min.Y + rng.Intn(height-cropHeight+1)
		cropped := imaging.Crop(img, image.Rect(x0, y0, x0+cropWidth, y0+cropHeight))
		return imaging.Resize(cropped, t.size, t.size, imaging.Linear)
	}

	// Fallback: largest centered square.
	side := min(width, height)
	img = imaging.CropCenter(img, side, side)
	return imaging.Resize(img, t.size, t.size, imaging.Linear)
}

type randomHorizontalFlip struct {
	prob float64
}

// RandomHorizontalFlip mirrors the image horizontally with probability prob.
func RandomHorizontalFlip(prob float64) Transform {
	return randomHorizontalFlip{prob: prob}
}

func (t randomHorizontalFlip) Name() string {
	return fmt.Sprintf("RandomHorizontalFlip(%g)", t.prob)
}

func (t randomHorizontalFlip) Apply(img image.Image, rng *rand.Rand) image.Image {
	if rng.Float64() < t.prob {
		return imaging.FlipH(img)
	}
	return img
}

type resize struct {
	size int
}

// Resize scales the image so its shortest side equals size, preserving the
// aspect ratio.
func Resize(size int) Transform {
	return resize{size: size}
}

func (t resize) Name() string {
	return fmt.Sprintf("Resize(%d)", t.size)
}

func (t resize) Apply(img image.Image, _ *rand.Rand) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= bounds.Dy() {
		return imaging.Resize(img, t.size, 0, imaging.Linear)
	}
	return imaging.Resize(img, 0, t.size, imaging.Linear)
}

type centerCrop struct {
	size int
}

// CenterCrop cuts a size x size region from the middle of the image.
func CenterCrop(size int) Transform {
	return centerCrop{size: size}
}

func (t centerCrop) Name() string {
	return fmt.Sprintf("CenterCrop(%d)", t.size)
}

func (t centerCrop) Apply(img image.Image, _ *rand.Rand) image.Image {
	return imaging.CropCenter(img, t.size, t.size)
}
