// Command verify checks a dataset tree before training: it scans the train,
// valid and test splits, decodes every image to catch corrupt files, and
// reports per-class statistics. It can also render the training split's
// class distribution as a bar chart.
//
// Usage:
//
//	verify DATA_DIR [--chart classes.png]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"k8s.io/klog/v2"

	"github.com/petalml/trainprep/imageset"
)

func newVerifyCmd() *cobra.Command {
	var chartPath string
	cmd := &cobra.Command{
		Use:   "verify DATA_DIR",
		Short: "Check every image of a dataset tree and report class statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, args[0], chartPath)
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "write the train split's class distribution as a bar chart PNG")
	return cmd
}

func run(cmd *cobra.Command, dataDir, chartPath string) error {
	out := cmd.OutOrStdout()
	dirs := imageset.SplitDirs(dataDir)

	totalImages := 0
	totalBad := 0
	var trainFolder *imageset.ImageFolder
	for _, split := range imageset.Splits() {
		// A nil pipeline yields raw decoded images; decoding is all the
		// verification needs.
		folder, err := imageset.NewImageFolder(dirs[split], nil)
		if err != nil {
			return errors.WithMessagef(err, "failed to load %s split", split)
		}
		if split == imageset.Train {
			trainFolder = folder
		}

		bad := checkImages(out, split, folder)
		totalImages += folder.Len()
		totalBad += bad
		fmt.Fprintf(out, "%s: %s images in %d classes, %d unreadable\n",
			split, humanize.Comma(int64(folder.Len())), len(folder.Classes()), bad)
	}

	reportClassStats(out, trainFolder)

	if chartPath != "" {
		if err := writeClassChart(chartPath, trainFolder); err != nil {
			return errors.WithMessagef(err, "failed to write class distribution chart")
		}
		fmt.Fprintf(out, "Wrote class distribution chart to %s\n", chartPath)
	}

	fmt.Fprintf(out, "Checked %s images total\n", humanize.Comma(int64(totalImages)))
	if totalBad > 0 {
		return errors.Errorf("%d unreadable images found", totalBad)
	}
	return nil
}

// checkImages decodes every image of the split and returns how many failed.
func checkImages(out io.Writer, split imageset.Split, folder *imageset.ImageFolder) (bad int) {
	bar := progressbar.NewOptions(folder.Len(),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(fmt.Sprintf("Checking %s", split)),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionSetTheme(progressbar.ThemeUnicode),
	)
	for i := 0; i < folder.Len(); i++ {
		if _, _, err := folder.Example(i, nil); err != nil {
			bad++
			klog.Warningf("unreadable image in %s split: %v", split, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Close()
	fmt.Fprintln(out)
	return bad
}

func reportClassStats(out io.Writer, folder *imageset.ImageFolder) {
	counts := folder.ClassCounts()
	sizes := make([]float64, 0, len(counts))
	for _, class := range folder.Classes() {
		sizes = append(sizes, float64(counts[class]))
	}
	mean := stat.Mean(sizes, nil)
	stddev := stat.StdDev(sizes, nil)
	fmt.Fprintf(out, "train split: %.1f images per class on average (stddev %.1f)\n", mean, stddev)
}

func writeClassChart(path string, folder *imageset.ImageFolder) error {
	classes := folder.Classes()
	counts := folder.ClassCounts()
	values := make(plotter.Values, len(classes))
	for i, class := range classes {
		values[i] = float64(counts[class])
	}

	p := plot.New()
	p.Title.Text = "Images per class (train split)"
	p.Y.Label.Text = "images"
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(classes...)
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func main() {
	if err := newVerifyCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
