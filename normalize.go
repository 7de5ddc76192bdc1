// Package fitdecoder decodes FIT activity files into sparse, normalized
// sensor records and summarizes the recording they describe.
package fitdecoder

import (
	"math"

	"github.com/nfishel48/fit-decoder/fitframe"
)

const (
	// fitEpochOffset converts FIT timestamps (seconds since
	// 1989-12-31T00:00:00Z) to Unix seconds.
	fitEpochOffset int64 = 631065600

	recordMesgNum uint16 = 20
)

// Record is one normalized sensor sample. Only fields the device
// actually wrote appear as keys; the reserved sentinel values never do.
// Every record produced by this package carries an int64 "timestamp" in
// Unix seconds. Unscaled integer fields are int64, scaled fields are
// float64.
type Record map[string]any

// Timestamp returns the record's timestamp when it holds a positive
// integer, which is the only form the analyzer trusts.
func (r Record) Timestamp() (int64, bool) {
	v, ok := r["timestamp"]
	if !ok {
		return 0, false
	}
	ts, ok := intValue(v)
	if !ok || ts <= 0 {
		return 0, false
	}
	return ts, true
}

// NormalizeRecord converts a decoded record message into a Record.
// Messages without a usable timestamp produce nothing: a sample that
// cannot be placed in time is useless downstream. Fields flagged
// invalid, array fields, and NaN floats are dropped.
func NormalizeRecord(msg *fitframe.Message) (Record, bool) {
	if msg == nil || !msg.HasTimestamp {
		return nil, false
	}

	rec := Record{"timestamp": int64(msg.Timestamp) + fitEpochOffset}
	for _, f := range msg.Fields {
		def, ok := recordFields[f.Num]
		if !ok || f.Invalid || f.IsArray {
			continue
		}
		if f.Floating {
			fv, ok := f.Value.(float64)
			if !ok || math.IsNaN(fv) {
				continue
			}
			if def.scale > 0 {
				fv = fv/def.scale - def.offset
			}
			rec[def.name] = fv
			continue
		}
		iv, ok := intValue(f.Value)
		if !ok {
			continue
		}
		if def.scale > 0 {
			rec[def.name] = float64(iv)/def.scale - def.offset
		} else {
			rec[def.name] = iv
		}
	}
	return rec, true
}

func intValue(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	default:
		iv, ok := intValue(v)
		if !ok {
			return 0, false
		}
		return float64(iv), true
	}
}
