// Command train parses the training configuration and prepares the dataset
// loaders for an image classifier: it resolves the split directories under
// the dataset root, builds the per-split transform pipelines, loads the
// labeled image folders and reports what the training loop will consume.
//
// Usage:
//
//	train DATA_DIR [--arch vgg11] [--save_dir DIR] [--learning_rate 0.001]
//	      [--hidden_units 512] [--epochs 5] [--gpu=false]
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/petalml/trainprep/config"
	"github.com/petalml/trainprep/imageset"
)

func newTrainCmd() *cobra.Command {
	cfg := config.New("")
	cmd := &cobra.Command{
		Use:   "train DATA_DIR",
		Short: "Prepare an image dataset for classifier training",
		Long: `Prepare a labeled image dataset for classifier training.

DATA_DIR must contain train, valid and test subdirectories, each holding one
subdirectory per class label with that class's image files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments parsed; failures past this point are not usage errors.
			cmd.SilenceUsage = true
			cfg.DataDir = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Arch, "arch", config.DefaultArch, "CNN architecture used by the classifier")
	flags.StringVar(&cfg.SaveDir, "save_dir", "", "directory where checkpoints and the class index map are saved")
	flags.Float64Var(&cfg.LearningRate, "learning_rate", config.DefaultLearningRate, "model learning rate")
	flags.IntVar(&cfg.HiddenUnits, "hidden_units", config.DefaultHiddenUnits, "units in the hidden layer before the classifier")
	flags.IntVar(&cfg.Epochs, "epochs", config.DefaultEpochs, "number of passes over the training data")
	flags.BoolVar(&cfg.GPU, "gpu", config.DefaultGPU, "train on the GPU (--gpu=false to train on the CPU)")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	cfg.Print(out)

	loaders, classToIdx, err := imageset.ForTraining(cfg.DataDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Found %d classes\n", len(classToIdx))
	for _, split := range imageset.Splits() {
		loader := loaders[split]
		fmt.Fprintf(out, "    %s: %d examples in %d batches\n",
			split, loader.NumExamples(), loader.NumBatches())
	}

	if cfg.SaveDir != "" {
		path, err := saveClassIndex(cfg.SaveDir, classToIdx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote class index map to %s\n", path)
	}
	return nil
}

// saveClassIndex writes the class-name-to-label mapping next to where the
// checkpoints will go, so inference can translate classifier outputs back to
// class names.
func saveClassIndex(dir string, classToIdx map[string]int) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create save directory %q", dir)
	}
	path := filepath.Join(dir, "class_to_idx.json")
	data, err := json.MarshalIndent(classToIdx, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode class index map")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %q", path)
	}
	return path, nil
}

func main() {
	if err := newTrainCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
