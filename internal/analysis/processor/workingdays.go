// workingdays.go: derives the 1-based day offset of each record's capture
// date relative to the earliest capture date in the batch.
package processor

import (
	"log/slog"
	"time"

	"github.com/wakin721/Neri/internal/detection"
)

// dateOnly maps a timestamp to its calendar date at midnight UTC. Anchoring
// in UTC makes the later subtraction count calendar days exactly; keeping the
// original location would make day spans crossing a DST transition come out a
// wall-clock hour short or long.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeWorkingDays sets WorkingDays on every record with a capture date:
// (capture_date - earliest_capture_date) in days, plus one. Records without
// a date keep WorkingDays unset. When no record has a valid date the batch
// is left untouched and a diagnostic is logged; this is not an error.
func ComputeWorkingDays(records []*detection.Record) {
	var earliest time.Time
	found := false

	for _, rec := range records {
		if !rec.HasTimestamp() {
			continue
		}
		day := dateOnly(rec.CaptureTimestamp)
		if !found || day.Before(earliest) {
			earliest = day
			found = true
		}
	}

	if !found {
		slog.Warn("cannot compute working days: no record has a valid capture date")
		return
	}

	for _, rec := range records {
		if !rec.HasTimestamp() {
			continue
		}
		day := dateOnly(rec.CaptureTimestamp)
		rec.WorkingDays = int(day.Sub(earliest).Hours()/24) + 1
	}
}
