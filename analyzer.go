package fitdecoder

import (
	"errors"
	"sort"
	"time"
)

// SessionGapSeconds is the largest distance between consecutive samples
// that still counts as the same recording session. Anything wider, a
// paused watch left running overnight for example, starts a new session.
const SessionGapSeconds int64 = 3600

var (
	// ErrNoRecords means no record carried a usable timestamp.
	ErrNoRecords = errors.New("fitdecoder: no records with a usable timestamp")

	// ErrInvalidRecords is reserved for record collections that are
	// structurally unusable. The current decoder never produces such
	// collections, so this is declared but not returned; callers may
	// still match on it.
	ErrInvalidRecords = errors.New("fitdecoder: invalid records")

	// ErrInsufficientData means the primary session has a single
	// distinct instant, so no positive duration can be computed.
	ErrInsufficientData = errors.New("fitdecoder: insufficient data for a duration")
)

// Session is one contiguous run of samples. Start and End are Unix
// seconds; Count is the number of samples inside the run.
type Session struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Count int   `json:"count"`
}

// Duration is the session's span in seconds.
func (s Session) Duration() int64 { return s.End - s.Start }

// ActivityInfo summarizes the primary session of a decoded file.
// TotalDistance is nil when no sample in the session carried a distance.
type ActivityInfo struct {
	Date          time.Time `json:"date"`
	DurationSec   int64     `json:"duration_seconds"`
	TotalDistance *float64  `json:"total_distance,omitempty"`
	RecordCount   int       `json:"record_count"`
	HasHeartRate  bool      `json:"has_heart_rate"`
	HasAltitude   bool      `json:"has_altitude"`
	Session       Session   `json:"session"`
}

// Sessions partitions the records' timestamps into contiguous runs.
// Timestamps are sorted first, so input order does not matter; records
// without a usable timestamp are ignored. Returns nil when nothing is
// usable.
func Sessions(records []Record) []Session {
	ts := usableTimestamps(records)
	if len(ts) == 0 {
		return nil
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	sessions := make([]Session, 0, 4)
	current := Session{Start: ts[0], End: ts[0], Count: 1}
	for _, t := range ts[1:] {
		if t-current.End > SessionGapSeconds {
			sessions = append(sessions, current)
			current = Session{Start: t, End: t, Count: 1}
			continue
		}
		current.End = t
		current.Count++
	}
	return append(sessions, current)
}

// primarySession picks the longest session by duration. On a tie the
// earlier session wins, which falls out of the strict > comparison over
// the sorted sessions.
func primarySession(records []Record) (Session, error) {
	sessions := Sessions(records)
	if len(sessions) == 0 {
		return Session{}, ErrNoRecords
	}
	best := sessions[0]
	for _, s := range sessions[1:] {
		if s.Duration() > best.Duration() {
			best = s
		}
	}
	return best, nil
}

// ActivityDate returns the UTC calendar date of the first record in the
// original decode order. Unlike the duration, this does not look at the
// primary session: the file's first sample names the day the recording
// belongs to.
func ActivityDate(records []Record) (time.Time, error) {
	if len(records) == 0 {
		return time.Time{}, ErrNoRecords
	}
	ts, ok := records[0].Timestamp()
	if !ok {
		return time.Time{}, ErrNoRecords
	}
	t := time.Unix(ts, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ActivityDuration returns the primary session's span in seconds,
// always positive on success.
func ActivityDuration(records []Record) (int64, error) {
	s, err := primarySession(records)
	if err != nil {
		return 0, err
	}
	if s.Start == s.End {
		return 0, ErrInsufficientData
	}
	return s.Duration(), nil
}

// Analyze builds the full activity summary. Only samples inside the
// primary session count toward the totals and presence flags; samples
// from other sessions are ignored.
func Analyze(records []Record) (*ActivityInfo, error) {
	date, err := ActivityDate(records)
	if err != nil {
		return nil, err
	}
	session, err := primarySession(records)
	if err != nil {
		return nil, err
	}
	if session.Start == session.End {
		return nil, ErrInsufficientData
	}

	info := &ActivityInfo{
		Date:        date,
		DurationSec: session.Duration(),
		Session:     session,
	}

	var maxDistance float64
	haveDistance := false
	for _, r := range records {
		ts, ok := r.Timestamp()
		if !ok || ts < session.Start || ts > session.End {
			continue
		}
		info.RecordCount++
		if _, ok := r["heart_rate"]; ok {
			info.HasHeartRate = true
		}
		if _, ok := r["altitude"]; ok {
			info.HasAltitude = true
		}
		if d, ok := floatValue(r["distance"]); ok {
			if !haveDistance || d > maxDistance {
				maxDistance = d
				haveDistance = true
			}
		}
	}
	if haveDistance {
		info.TotalDistance = &maxDistance
	}
	return info, nil
}

func usableTimestamps(records []Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		if ts, ok := r.Timestamp(); ok {
			out = append(out, ts)
		}
	}
	return out
}
