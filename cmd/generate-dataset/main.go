// Command generate-dataset writes a synthetic dataset and a golden file
// listing, for a set of targets, whether each one occurs in the dataset.
// The golden answers come from a plain sequential scan and are used to
// check the parallel search end to end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agbru/parsearch/internal/config"
	"github.com/agbru/parsearch/internal/dataset"
)

// GoldenCase is the expected answer for one target.
type GoldenCase struct {
	Target int64 `json:"target"`
	Found  bool  `json:"found"`
}

// Golden describes a generated dataset and its expected answers.
type Golden struct {
	Dataset string       `json:"dataset"`
	Pattern string       `json:"pattern"`
	Size    int          `json:"size"`
	Seed    int64        `json:"seed"`
	Cases   []GoldenCase `json:"cases"`
}

type options struct {
	pattern string
	size    int
	seed    int64
	out     string
	targets string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "generate-dataset: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("generate-dataset", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var opts options
	fs.StringVar(&opts.pattern, "pattern", config.PatternRandom, "Dataset pattern: sequential, random or constant.")
	fs.IntVar(&opts.size, "size", 1<<16, "Number of values.")
	fs.Int64Var(&opts.seed, "seed", 1, "Seed for the random pattern.")
	fs.StringVar(&opts.out, "out", "testdata/dataset.txt.zst", "Dataset path; the extension selects the compression.")
	fs.StringVar(&opts.targets, "targets", "", "Comma-separated targets for the golden file (default: a spread over the value range).")
	if err := fs.Parse(args); err != nil {
		return err
	}

	values, err := dataset.Generate(opts.pattern, opts.size, opts.seed)
	if err != nil {
		return err
	}
	if err := dataset.Write(opts.out, values); err != nil {
		return err
	}

	targets, err := config.ParseTargets(opts.targets)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		targets = spreadTargets(opts.size)
	}

	golden := Golden{
		Dataset: filepath.Base(opts.out),
		Pattern: opts.pattern,
		Size:    opts.size,
		Seed:    opts.seed,
		Cases:   make([]GoldenCase, 0, len(targets)),
	}
	for _, t := range targets {
		golden.Cases = append(golden.Cases, GoldenCase{Target: t, Found: contains(values, t)})
	}

	goldenPath := goldenPathFor(opts.out)
	if err := writeGolden(goldenPath, golden); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d values to %s and %d cases to %s\n", len(values), opts.out, len(golden.Cases), goldenPath)
	return nil
}

// contains is the sequential oracle.
func contains(values []int64, target int64) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// spreadTargets covers both ends of the generated value range, a few
// interior points and values no pattern produces.
func spreadTargets(size int) []int64 {
	n := int64(size)
	return []int64{-1, 0, 1, n / 3, n / 2, n - 1, n, 2*n - 1, 2 * n}
}

func goldenPathFor(datasetPath string) string {
	dir, base := filepath.Split(datasetPath)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = base[:len(base)-len(ext)]
	}
	return filepath.Join(dir, base+".golden.json")
}

func writeGolden(path string, g Golden) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
