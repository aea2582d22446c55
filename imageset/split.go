// Package imageset loads labeled image folder trees and presents them as
// batched datasets implementing gomlx's train.Dataset interface.
//
// The expected layout under the dataset root is one directory per split
// (train, valid, test), each containing one subdirectory per class label,
// each containing the image files of that class.
package imageset

import "path/filepath"

// Split names one of the three disjoint partitions of the dataset.
type Split string

const (
	Train Split = "train"
	Valid Split = "valid"
	Test  Split = "test"
)

// Splits returns all splits in their conventional order.
func Splits() []Split {
	return []Split{Train, Valid, Test}
}

// SplitDirs maps each split to its directory under dataDir. It is pure path
// construction: nothing is checked against the filesystem here, a missing
// split directory only surfaces when its ImageFolder is built.
func SplitDirs(dataDir string) map[Split]string {
	dirs := make(map[Split]string, 3)
	for _, split := range Splits() {
		dirs[split] = filepath.Join(dataDir, string(split))
	}
	return dirs
}
