package fitdecoder

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/tormoder/fit"

	"github.com/nfishel48/fit-decoder/fitframe"
)

var (
	// ErrIntegrityCheckFailed means the byte stream failed the FIT
	// structural pre-check (header, size, CRC) before any field was
	// decoded.
	ErrIntegrityCheckFailed = errors.New("fitdecoder: integrity check failed")

	// ErrSDKException means the stream passed the integrity check but
	// the detailed read still failed.
	ErrSDKException = errors.New("fitdecoder: decode failed")
)

// DecodeBytes decodes a FIT byte stream into normalized records, in the
// order the device wrote them. Empty input is a valid empty recording
// and yields an empty slice, not an error. The stream is read twice:
// an integrity pass over the whole file, then the full decode from the
// start.
func DecodeBytes(data []byte) ([]Record, error) {
	if len(data) == 0 {
		return []Record{}, nil
	}

	if err := fit.CheckIntegrity(bytes.NewReader(data), false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrityCheckFailed, err)
	}

	parsed, err := fitframe.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSDKException, err)
	}

	records := make([]Record, 0, len(parsed.Messages))
	for i := range parsed.Messages {
		msg := &parsed.Messages[i]
		if msg.GlobalNum != recordMesgNum {
			continue
		}
		if rec, ok := NormalizeRecord(msg); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// DecodeFile reads and decodes a FIT file from disk.
func DecodeFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	return DecodeBytes(data)
}

// AnalyzeBytes decodes a FIT byte stream and summarizes its primary
// session.
func AnalyzeBytes(data []byte) (*ActivityInfo, error) {
	records, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return Analyze(records)
}

// AnalyzeFile decodes a FIT file from disk and summarizes its primary
// session.
func AnalyzeFile(path string) (*ActivityInfo, error) {
	records, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return Analyze(records)
}
