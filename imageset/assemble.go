package imageset

import (
	"math/rand"
	"slices"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/petalml/trainprep/transform"
)

// Loaders holds one batch loader per split.
type Loaders map[Split]*Loader

// ForTraining prepares everything the training loop consumes from a dataset
// root: it resolves the split directories, builds each split's transform
// pipeline (augmentation for train, deterministic resize+crop for valid and
// test), loads one ImageFolder per split from its own directory, and wraps
// each in a shuffling Loader with DefaultBatchSize.
//
// The returned class index map is taken from the training split only, since
// the classifier's output indices are defined relative to it. A mismatching
// class set in another split is logged as a warning, not an error.
func ForTraining(dataDir string) (Loaders, map[string]int, error) {
	dirs := SplitDirs(dataDir)
	pipelines := map[Split]transform.Pipeline{
		Train: transform.Training(),
		Valid: transform.Evaluation(),
		Test:  transform.Evaluation(),
	}

	folders := make(map[Split]*ImageFolder, len(dirs))
	for _, split := range Splits() {
		folder, err := NewImageFolder(dirs[split], pipelines[split])
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "failed to load %s split", split)
		}
		folders[split] = folder
	}

	trainClasses := folders[Train].Classes()
	for _, split := range []Split{Valid, Test} {
		if !slices.Equal(trainClasses, folders[split].Classes()) {
			klog.Warningf("%s split classes %v differ from train split classes %v; labels are indexed by the train split",
				split, folders[split].Classes(), trainClasses)
		}
	}

	loaders := make(Loaders, len(folders))
	for split, folder := range folders {
		shuffle := rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
		loaders[split] = NewLoader(string(split), folder, DefaultBatchSize, shuffle)
	}
	return loaders, folders[Train].ClassToIndex(), nil
}
