package transform

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// gradientImage returns a width x height image with a distinct color per
// pixel, so geometry changes are observable.
func gradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) % 256),
				A: 0xFF,
			})
		}
	}
	return img
}

func TestPipelineSteps(t *testing.T) {
	require.Equal(t, []string{
		"RandomRotation(30)",
		"RandomResizedCrop(224)",
		"RandomHorizontalFlip(0.5)",
	}, Training().Names())

	require.Equal(t, []string{
		"Resize(256)",
		"CenterCrop(224)",
	}, Evaluation().Names())
}

func TestTrainingPipelineOutputSize(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pipeline := Training()
	src := gradientImage(300, 200)
	for i := 0; i < 5; i++ {
		out := pipeline.Apply(src, rng)
		bounds := out.Bounds()
		require.Equal(t, CropSize, bounds.Dx(), "apply #%d width", i)
		require.Equal(t, CropSize, bounds.Dy(), "apply #%d height", i)
	}
}

func TestEvaluationPipelineDeterministic(t *testing.T) {
	pipeline := Evaluation()
	src := gradientImage(300, 400)

	first := pipeline.Apply(src, nil)
	second := pipeline.Apply(src, nil)

	bounds := first.Bounds()
	require.Equal(t, CropSize, bounds.Dx())
	require.Equal(t, CropSize, bounds.Dy())
	require.Equal(t, first, second, "evaluation pipeline must be deterministic")
}

func TestResizeShortestSide(t *testing.T) {
	for _, dims := range [][2]int{{400, 300}, {300, 400}, {256, 256}} {
		src := gradientImage(dims[0], dims[1])
		out := Resize(256).Apply(src, nil)
		bounds := out.Bounds()
		require.Equal(t, 256, min(bounds.Dx(), bounds.Dy()),
			"source %dx%d", dims[0], dims[1])
		require.GreaterOrEqual(t, max(bounds.Dx(), bounds.Dy()), 256)
	}
}

func TestCenterCrop(t *testing.T) {
	src := gradientImage(300, 200)
	out := CenterCrop(100).Apply(src, nil)
	bounds := out.Bounds()
	require.Equal(t, 100, bounds.Dx())
	require.Equal(t, 100, bounds.Dy())
}

func TestRandomHorizontalFlip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	src.Set(1, 0, color.RGBA{B: 0xFF, A: 0xFF})
	rng := rand.New(rand.NewSource(1))

	always := RandomHorizontalFlip(1.0).Apply(src, rng)
	r, _, b, _ := always.At(0, 0).RGBA()
	require.Zero(t, r>>8)
	require.EqualValues(t, 0xFF, b>>8)

	never := RandomHorizontalFlip(0.0).Apply(src, rng)
	r, _, _, _ = never.At(0, 0).RGBA()
	require.EqualValues(t, 0xFF, r>>8)
}

func TestRandomResizedCropSmallImage(t *testing.T) {
	// Tiny sources must still produce full-size crops via the fallback path.
	rng := rand.New(rand.NewSource(7))
	src := gradientImage(8, 8)
	out := RandomResizedCrop(224).Apply(src, rng)
	bounds := out.Bounds()
	require.Equal(t, 224, bounds.Dx())
	require.Equal(t, 224, bounds.Dy())
}
