// Package export writes decoded FIT records and the activity summary to
// an output directory as columnar sample files plus a JSON summary.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	fitdecoder "github.com/nfishel48/fit-decoder"
)

// Options controls where and how artifacts are written.
type Options struct {
	OutDir    string
	Format    string // "parquet" (default) or "csv"
	Overwrite bool
}

// Result lists the artifacts written by Export.
type Result struct {
	OutputDir        string `json:"output_dir"`
	RecordsPath      string `json:"records_path"`
	ActivityInfoPath string `json:"activity_info_path,omitempty"`
	RecordCount      int    `json:"record_count"`
}

// Export writes the records as records.parquet or records.csv, and the
// summary as activity_info.json when one is available. A nil info is
// allowed: recordings too short to summarize still export their samples.
func Export(records []fitdecoder.Record, info *fitdecoder.ActivityInfo, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	rows := buildSampleRows(records)
	recordsPath := filepath.Join(opts.OutDir, "records."+format)
	switch format {
	case "csv":
		if err := writeSampleCSV(recordsPath, rows); err != nil {
			return nil, fmt.Errorf("write records csv: %w", err)
		}
	case "parquet":
		if err := writeSampleParquet(recordsPath, rows); err != nil {
			return nil, fmt.Errorf("write records parquet: %w", err)
		}
	}

	result := &Result{
		OutputDir:   opts.OutDir,
		RecordsPath: recordsPath,
		RecordCount: len(rows),
	}

	if info != nil {
		infoPath := filepath.Join(opts.OutDir, "activity_info.json")
		if err := writeJSON(infoPath, info); err != nil {
			return nil, fmt.Errorf("write activity_info.json: %w", err)
		}
		result.ActivityInfoPath = infoPath
	}
	return result, nil
}

func ensureOutputDir(dir string, overwrite bool) error {
	if st, err := os.Stat(dir); err == nil {
		if !st.IsDir() {
			return fmt.Errorf("output path %s exists and is not a directory", dir)
		}
		if !overwrite {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				return fmt.Errorf("output directory %s is not empty (use overwrite)", dir)
			}
		}
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

type sampleRow struct {
	Timestamp    int64
	PositionLat  *float64
	PositionLong *float64
	Distance     *float64
	Speed        *float64
	Altitude     *float64
	HeartRate    *float64
	Cadence      *float64
	Power        *float64
	Temperature  *float64
}

func buildSampleRows(records []fitdecoder.Record) []sampleRow {
	rows := make([]sampleRow, 0, len(records))
	for _, r := range records {
		ts, ok := r.Timestamp()
		if !ok {
			continue
		}
		rows = append(rows, sampleRow{
			Timestamp:    ts,
			PositionLat:  fieldFloat(r, "position_lat"),
			PositionLong: fieldFloat(r, "position_long"),
			Distance:     fieldFloat(r, "distance"),
			Speed:        fieldFloat(r, "speed"),
			Altitude:     fieldFloat(r, "altitude"),
			HeartRate:    fieldFloat(r, "heart_rate"),
			Cadence:      fieldFloat(r, "cadence"),
			Power:        fieldFloat(r, "power"),
			Temperature:  fieldFloat(r, "temperature"),
		})
	}
	return rows
}

func fieldFloat(r fitdecoder.Record, key string) *float64 {
	v, ok := r[key]
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case float64:
		out := x
		return &out
	case int64:
		out := float64(x)
		return &out
	default:
		return nil
	}
}

var sampleHeader = []string{
	"timestamp", "position_lat", "position_long", "distance", "speed",
	"altitude", "heart_rate", "cadence", "power", "temperature",
}

func writeSampleCSV(path string, rows []sampleRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sampleHeader); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			strconv.FormatInt(row.Timestamp, 10),
			formatFloatPtr(row.PositionLat),
			formatFloatPtr(row.PositionLong),
			formatFloatPtr(row.Distance),
			formatFloatPtr(row.Speed),
			formatFloatPtr(row.Altitude),
			formatFloatPtr(row.HeartRate),
			formatFloatPtr(row.Cadence),
			formatFloatPtr(row.Power),
			formatFloatPtr(row.Temperature),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type sampleParquetRow struct {
	Timestamp    int64   `parquet:"name=timestamp, type=INT64"`
	PositionLat  float64 `parquet:"name=position_lat, type=DOUBLE"`
	PositionLong float64 `parquet:"name=position_long, type=DOUBLE"`
	Distance     float64 `parquet:"name=distance, type=DOUBLE"`
	Speed        float64 `parquet:"name=speed, type=DOUBLE"`
	Altitude     float64 `parquet:"name=altitude, type=DOUBLE"`
	HeartRate    float64 `parquet:"name=heart_rate, type=DOUBLE"`
	Cadence      float64 `parquet:"name=cadence, type=DOUBLE"`
	Power        float64 `parquet:"name=power, type=DOUBLE"`
	Temperature  float64 `parquet:"name=temperature, type=DOUBLE"`
}

func writeSampleParquet(path string, rows []sampleRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		out := sampleParquetRow{
			Timestamp:    row.Timestamp,
			PositionLat:  valueOrNaN(row.PositionLat),
			PositionLong: valueOrNaN(row.PositionLong),
			Distance:     valueOrNaN(row.Distance),
			Speed:        valueOrNaN(row.Speed),
			Altitude:     valueOrNaN(row.Altitude),
			HeartRate:    valueOrNaN(row.HeartRate),
			Cadence:      valueOrNaN(row.Cadence),
			Power:        valueOrNaN(row.Power),
			Temperature:  valueOrNaN(row.Temperature),
		}
		if err := pw.Write(out); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
