package fitdecoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tormoder/fit"
	"github.com/tormoder/fit/dyncrc16"
)

func buildActivityFIT(t *testing.T, start time.Time, samples int) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}

	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	event := fit.NewEventMsg()
	event.Timestamp = start
	event.Event = fit.EventTimer
	event.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, event)

	for i := 0; i < samples; i++ {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(i*10) * time.Second)
		record.HeartRate = 135
		record.Power = 245
		record.Cadence = 92
		record.Distance = uint32((i + 1) * 30000) // 300 m per sample at scale 100
		record.Altitude = uint16(3000 + i*5)      // around 100 m at scale 5 offset 500
		activity.Records = append(activity.Records, record)
	}

	stop := fit.NewEventMsg()
	stop.Timestamp = start.Add(time.Duration(samples*10) * time.Second)
	stop.Event = fit.EventTimer
	stop.EventType = fit.EventTypeStop
	activity.Events = append(activity.Events, stop)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBytesEmptyInput(t *testing.T) {
	records, err := DecodeBytes(nil)
	if err != nil {
		t.Fatalf("DecodeBytes(nil) error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}

	records, err = DecodeBytes([]byte{})
	if err != nil {
		t.Fatalf("DecodeBytes(empty) error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

func TestDecodeBytesJunkFailsIntegrity(t *testing.T) {
	_, err := DecodeBytes([]byte{0x01, 0x02, 0x03, 0x04})
	if !errors.Is(err, ErrIntegrityCheckFailed) {
		t.Fatalf("error = %v, want ErrIntegrityCheckFailed", err)
	}
}

func TestDecodeBytesCorruptCRCFailsIntegrity(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	data := buildActivityFIT(t, start, 3)
	data[len(data)-1] ^= 0xFF

	_, err := DecodeBytes(data)
	if !errors.Is(err, ErrIntegrityCheckFailed) {
		t.Fatalf("error = %v, want ErrIntegrityCheckFailed", err)
	}
}

// buildStructurallyBadFIT assembles a stream with a correct header and
// file CRC whose payload is a data message for a local type that was
// never defined: it passes the integrity pre-check but cannot be read.
func buildStructurallyBadFIT(t *testing.T) []byte {
	t.Helper()

	payload := []byte{0x05}
	stream := make([]byte, 0, 14+len(payload)+2)
	stream = append(stream,
		14, 0x10,
		0x5C, 0x08, // profile version
		0, 0, 0, 0, // data size, patched below
		'.', 'F', 'I', 'T',
	)
	binary.LittleEndian.PutUint32(stream[4:8], uint32(len(payload)))
	stream = binary.LittleEndian.AppendUint16(stream, dyncrc16.Checksum(stream[:12]))
	stream = append(stream, payload...)
	stream = binary.LittleEndian.AppendUint16(stream, dyncrc16.Checksum(stream))
	return stream
}

func TestDecodeBytesBadPayloadIsDecodeFailure(t *testing.T) {
	_, err := DecodeBytes(buildStructurallyBadFIT(t))
	if !errors.Is(err, ErrSDKException) {
		t.Fatalf("error = %v, want ErrSDKException", err)
	}
	if errors.Is(err, ErrIntegrityCheckFailed) {
		t.Fatalf("a stream that passes the pre-check must not report an integrity failure: %v", err)
	}
}

func TestDecodeBytesRecords(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	data := buildActivityFIT(t, start, 5)

	records, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}

	first := records[0]
	ts, ok := first.Timestamp()
	if !ok {
		t.Fatal("first record has no timestamp")
	}
	if ts != start.Unix() {
		t.Fatalf("timestamp = %d, want %d", ts, start.Unix())
	}
	if hr, ok := first["heart_rate"].(int64); !ok || hr != 135 {
		t.Fatalf("heart_rate = %v, want int64(135)", first["heart_rate"])
	}
	if p, ok := first["power"].(int64); !ok || p != 245 {
		t.Fatalf("power = %v, want int64(245)", first["power"])
	}
	if d, ok := first["distance"].(float64); !ok || d != 300.0 {
		t.Fatalf("distance = %v, want 300.0", first["distance"])
	}
	if alt, ok := first["altitude"].(float64); !ok || alt != 100.0 {
		t.Fatalf("altitude = %v, want 100.0", first["altitude"])
	}

	// Records come back in the order the device wrote them.
	prev := int64(0)
	for i, r := range records {
		ts, ok := r.Timestamp()
		if !ok {
			t.Fatalf("record %d has no timestamp", i)
		}
		if ts <= prev {
			t.Fatalf("record %d out of order: %d after %d", i, ts, prev)
		}
		prev = ts
	}
}

func TestAnalyzeBytesEndToEnd(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	data := buildActivityFIT(t, start, 5)

	info, err := AnalyzeBytes(data)
	if err != nil {
		t.Fatalf("AnalyzeBytes error: %v", err)
	}
	wantDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !info.Date.Equal(wantDate) {
		t.Fatalf("date = %v, want %v", info.Date, wantDate)
	}
	if info.DurationSec != 40 {
		t.Fatalf("duration = %d, want 40", info.DurationSec)
	}
	if info.RecordCount != 5 {
		t.Fatalf("record count = %d, want 5", info.RecordCount)
	}
	if !info.HasHeartRate || !info.HasAltitude {
		t.Fatalf("presence flags = hr:%v alt:%v, want both true", info.HasHeartRate, info.HasAltitude)
	}
	if info.TotalDistance == nil || *info.TotalDistance != 1500.0 {
		t.Fatalf("total distance = %v, want 1500.0", info.TotalDistance)
	}
}

func TestAnalyzeBytesSingleSample(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	data := buildActivityFIT(t, start, 1)

	if _, err := AnalyzeBytes(data); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestDecodeFileRoundTrip(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	data := buildActivityFIT(t, start, 3)

	path := filepath.Join(t.TempDir(), "activity.fit")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "nope.fit"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist in chain", err)
	}
	if errors.Is(err, ErrIntegrityCheckFailed) {
		t.Fatalf("missing file must not report an integrity failure: %v", err)
	}
}
