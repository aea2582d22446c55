// Package config holds the parsed command-line configuration for the
// training preparation tool.
package config

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Defaults for the optional flags.
//
// DefaultHiddenUnits is 512: older docs of this tool mentioned 4096, but 512
// is the value that always shipped and what checkpoints were trained with.
const (
	DefaultArch         = "vgg11"
	DefaultLearningRate = 0.001
	DefaultHiddenUnits  = 512
	DefaultEpochs       = 5
	DefaultGPU          = true
)

// Config is the training configuration parsed from the command line. It is
// built once at startup and never mutated afterwards.
type Config struct {
	// DataDir is the dataset root, expected to contain the train, valid and
	// test split directories.
	DataDir string

	// Arch names the CNN architecture; validated by the model builder, not
	// here.
	Arch string

	// SaveDir is where checkpoints and the class index map are written.
	// Empty disables saving.
	SaveDir string

	LearningRate float64
	HiddenUnits  int
	Epochs       int

	// GPU selects GPU training. It is a real boolean flag: --gpu=false
	// disables it.
	GPU bool
}

// New returns a Config for dataDir with all optional fields at their
// defaults.
func New(dataDir string) *Config {
	return &Config{
		DataDir:      dataDir,
		Arch:         DefaultArch,
		LearningRate: DefaultLearningRate,
		HiddenUnits:  DefaultHiddenUnits,
		Epochs:       DefaultEpochs,
		GPU:          DefaultGPU,
	}
}

// Validate checks the configuration before any data is touched.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.Errorf("data directory must not be empty")
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning rate must be positive, got %g", c.LearningRate)
	}
	if c.HiddenUnits <= 0 {
		return errors.Errorf("hidden units must be positive, got %d", c.HiddenUnits)
	}
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	return nil
}

// Print writes a human-readable summary to w, one line per field, each
// prefixed with the field's flag name.
func (c *Config) Print(w io.Writer) {
	fmt.Fprintln(w, "Command line arguments:")
	fmt.Fprintf(w, "    data_dir = %s\n", c.DataDir)
	fmt.Fprintf(w, "    arch = %s\n", c.Arch)
	fmt.Fprintf(w, "    save_dir = %s\n", c.SaveDir)
	fmt.Fprintf(w, "    learning_rate = %g\n", c.LearningRate)
	fmt.Fprintf(w, "    hidden_units = %d\n", c.HiddenUnits)
	fmt.Fprintf(w, "    epochs = %d\n", c.Epochs)
	fmt.Fprintf(w, "    gpu = %t\n", c.GPU)
}
