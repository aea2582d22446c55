package imageset

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/petalml/trainprep/transform"
)

// imageExtensions lists the file extensions the registered decoders above
// can handle.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

type sample struct {
	path  string
	label int32
}

// ImageFolder is a labeled dataset backed by a directory with one
// subdirectory per class. Classes are assigned dense indices in lexical
// order. Only file paths are collected at construction; images are decoded
// and transformed lazily by Example.
type ImageFolder struct {
	dir      string
	pipeline transform.Pipeline

	classes    []string
	classToIdx map[string]int
	samples    []sample
}

// NewImageFolder scans dir and indexes its class subdirectories and image
// files. pipeline may be nil to yield raw decoded images. It returns an
// error if dir is unreadable, contains no class subdirectories, or contains
// no image files.
func NewImageFolder(dir string, pipeline transform.Pipeline) (*ImageFolder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan dataset directory %q", dir)
	}

	f := &ImageFolder{
		dir:        dir,
		pipeline:   pipeline,
		classToIdx: make(map[string]int),
	}
	for _, entry := range entries {
		if entry.IsDir() {
			f.classes = append(f.classes, entry.Name())
		}
	}
	if len(f.classes) == 0 {
		return nil, errors.Errorf("dataset directory %q has no class subdirectories", dir)
	}
	sort.Strings(f.classes)
	for idx, class := range f.classes {
		f.classToIdx[class] = idx
	}

	for _, class := range f.classes {
		classDir := filepath.Join(dir, class)
		files, err := os.ReadDir(classDir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan class directory %q", classDir)
		}
		label := int32(f.classToIdx[class])
		for _, file := range files {
			if file.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(file.Name()))] {
				continue
			}
			f.samples = append(f.samples, sample{
				path:  filepath.Join(classDir, file.Name()),
				label: label,
			})
		}
	}
	if len(f.samples) == 0 {
		return nil, errors.Errorf("dataset directory %q has no image files", dir)
	}
	return f, nil
}

// Dir returns the directory the dataset was built from.
func (f *ImageFolder) Dir() string { return f.dir }

// Len returns the number of examples.
func (f *ImageFolder) Len() int { return len(f.samples) }

// Classes returns the class names in index order.
func (f *ImageFolder) Classes() []string {
	classes := make([]string, len(f.classes))
	copy(classes, f.classes)
	return classes
}

// ClassToIndex returns the mapping from class name to its dense label index.
func (f *ImageFolder) ClassToIndex() map[string]int {
	m := make(map[string]int, len(f.classToIdx))
	for class, idx := range f.classToIdx {
		m[class] = idx
	}
	return m
}

// ClassCounts returns the number of examples per class name.
func (f *ImageFolder) ClassCounts() map[string]int {
	counts := make(map[string]int, len(f.classes))
	for _, s := range f.samples {
		counts[f.classes[s.label]]++
	}
	return counts
}

// Example decodes the i-th image, applies the transform pipeline and returns
// the result with its label. rng feeds the randomized transforms and may be
// nil when the pipeline is deterministic or nil.
func (f *ImageFolder) Example(i int, rng *rand.Rand) (image.Image, int32, error) {
	if i < 0 || i >= len(f.samples) {
		return nil, 0, errors.Errorf("example index %d out of range [0, %d)", i, len(f.samples))
	}
	s := f.samples[i]
	img, err := decodeImage(s.path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to decode image %q", s.path)
	}
	if f.pipeline != nil {
		img = f.pipeline.Apply(img, rng)
	}
	return img, s.label, nil
}

func decodeImage(path string) (image.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	img, _, err := image.Decode(fh)
	return img, err
}
