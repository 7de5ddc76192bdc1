package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	fitdecoder "github.com/nfishel48/fit-decoder"
	"github.com/nfishel48/fit-decoder/export"
)

func main() {
	var (
		fitPath   = flag.String("fit", "", "Path to input .fit file")
		outDir    = flag.String("out", "", "Output directory")
		format    = flag.String("format", "parquet", "Record sample format: parquet|csv")
		overwrite = flag.Bool("overwrite", false, "Allow writing into non-empty output directories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --fit activity.fit --out outdir [--format parquet|csv] [--overwrite]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*fitPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	records, err := fitdecoder.DecodeFile(*fitPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitexport failed: %v\n", err)
		os.Exit(1)
	}

	// Short or single-sample recordings still export their records;
	// only the summary is skipped.
	info, err := fitdecoder.Analyze(records)
	if err != nil && !errors.Is(err, fitdecoder.ErrNoRecords) && !errors.Is(err, fitdecoder.ErrInsufficientData) {
		fmt.Fprintf(os.Stderr, "fitexport failed: %v\n", err)
		os.Exit(1)
	}

	result, err := export.Export(records, info, export.Options{
		OutDir:    *outDir,
		Format:    *format,
		Overwrite: *overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitexport failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("fitexport complete\n")
	fmt.Printf("Output dir:     %s\n", result.OutputDir)
	fmt.Printf("records:        %s (%d rows)\n", result.RecordsPath, result.RecordCount)
	if result.ActivityInfoPath != "" {
		fmt.Printf("activity info:  %s\n", result.ActivityInfoPath)
	}
}
