package imageset

import (
	"image"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"

	"github.com/petalml/trainprep/transform"
)

// DefaultBatchSize is the batch size used by ForTraining.
const DefaultBatchSize = 32

// Loader yields batches from an ImageFolder as tensors. It implements
// gomlx's train.Dataset: Yield returns io.EOF after the final (possibly
// partial) batch of an epoch, and Reset restarts the epoch, re-shuffling
// when shuffling is enabled.
type Loader struct {
	name      string
	folder    *ImageFolder
	batchSize int
	convert   *transform.Converter

	// shuffle permutes the example order every Reset; nil keeps the scan
	// order. rng feeds the randomized image transforms.
	shuffle *rand.Rand
	rng     *rand.Rand

	mu    sync.Mutex
	order []int
	next  int
}

var _ train.Dataset = (*Loader)(nil)

// NewLoader wraps folder into a batch loader. shuffle may be nil to disable
// shuffling.
func NewLoader(name string, folder *ImageFolder, batchSize int, shuffle *rand.Rand) *Loader {
	l := &Loader{
		name:      name,
		folder:    folder,
		batchSize: batchSize,
		convert:   transform.NewConverter(),
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(time.Now().UTC().UnixNano())),
	}
	l.Reset()
	return l
}

// Name implements train.Dataset.
func (l *Loader) Name() string { return l.name }

// NumExamples returns the number of examples in the underlying dataset.
func (l *Loader) NumExamples() int { return l.folder.Len() }

// NumBatches returns the number of batches per epoch, counting the final
// partial batch.
func (l *Loader) NumBatches() int {
	return (l.folder.Len() + l.batchSize - 1) / l.batchSize
}

// ClassToIndex returns the label map of the underlying dataset.
func (l *Loader) ClassToIndex() map[string]int { return l.folder.ClassToIndex() }

// Yield implements train.Dataset. It returns one input tensor shaped
// [batch, 3, height, width] and one labels tensor shaped [batch] (int32).
func (l *Loader) Yield() (spec any, inputs, labels []*tensors.Tensor, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.next >= len(l.order) {
		return nil, nil, nil, io.EOF
	}
	end := min(l.next+l.batchSize, len(l.order))
	indices := l.order[l.next:end]
	l.next = end

	images := make([]image.Image, 0, len(indices))
	labelValues := make([]int32, 0, len(indices))
	for _, idx := range indices {
		img, label, err := l.folder.Example(idx, l.rng)
		if err != nil {
			return nil, nil, nil, err
		}
		images = append(images, img)
		labelValues = append(labelValues, label)
	}

	batch, err := l.convert.Batch(images)
	if err != nil {
		return nil, nil, nil, err
	}
	spec = l
	inputs = []*tensors.Tensor{batch}
	labels = []*tensors.Tensor{tensors.FromValue(labelValues)}
	return
}

// Reset implements train.Dataset. It rewinds to the start of the epoch and
// draws a fresh shuffle of the example order.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next = 0
	if l.order == nil {
		l.order = make([]int, l.folder.Len())
		for i := range l.order {
			l.order[i] = i
		}
	}
	if l.shuffle != nil {
		l.shuffle.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
}
