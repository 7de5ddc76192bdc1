package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	fitdecoder "github.com/nfishel48/fit-decoder"
)

func main() {
	jsonOut := flag.Bool("json", false, "Emit the activity summary as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--json] activity.fit\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	info, err := fitdecoder.AnalyzeFile(flag.Arg(0))
	if err != nil {
		if errors.Is(err, fitdecoder.ErrInsufficientData) {
			fmt.Fprintf(os.Stderr, "fitinfo: recording too short to summarize\n")
		} else {
			fmt.Fprintf(os.Stderr, "fitinfo: %v\n", err)
		}
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			fmt.Fprintf(os.Stderr, "fitinfo: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Date:        %s\n", info.Date.Format("2006-01-02"))
	fmt.Printf("Duration:    %ds\n", info.DurationSec)
	if info.TotalDistance != nil {
		fmt.Printf("Distance:    %.1f m\n", *info.TotalDistance)
	}
	fmt.Printf("Records:     %d\n", info.RecordCount)
	fmt.Printf("Heart rate:  %v\n", info.HasHeartRate)
	fmt.Printf("Altitude:    %v\n", info.HasAltitude)
}
