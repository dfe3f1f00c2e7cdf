// eventtracker.go: the independent-event sweep. Marks, per image, whether it
// starts a new independent visit by a species, using a per-species last-seen
// clock and a cooldown window.
package processor

import (
	"sort"
	"time"

	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/detection"
)

// TagIndependents sweeps the batch in ascending capture-timestamp order and
// sets each timestamped record's Independent flag. Records without a
// timestamp are excluded and left untouched.
//
// The last-seen clock is a map local to this invocation, covering the whole
// sorted sequence: state deliberately persists across records within one
// sweep and never across sweeps, so repeated or concurrent exports cannot
// interfere with each other.
//
// A record's effective species list is its stored names when manually
// verified, otherwise a live re-filter of its raw detections against the
// given threshold map. Thresholds may have changed since the record's stored
// fields were derived, and the sweep must honor the current values.
//
// Records sharing an exact timestamp are ordered by filename, making the
// sweep deterministic.
func TagIndependents(records []*detection.Record, thresholds conf.ThresholdMap, cooldown time.Duration) {
	sorted := make([]*detection.Record, 0, len(records))
	for _, rec := range records {
		if rec.HasTimestamp() {
			sorted = append(sorted, rec)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CaptureTimestamp.Equal(sorted[j].CaptureTimestamp) {
			return sorted[i].CaptureTimestamp.Before(sorted[j].CaptureTimestamp)
		}
		return sorted[i].Filename < sorted[j].Filename
	})

	lastSeen := make(map[string]time.Time)

	for _, rec := range sorted {
		species := effectiveSpecies(rec, thresholds)
		if species.IsEmpty() {
			rec.Independent = false
			continue
		}

		now := rec.CaptureTimestamp
		independent := false

		// The decision is per image: any species starting a new visit
		// marks the whole record independent. Every species still gets
		// its clock advanced regardless of the verdict.
		for _, name := range species.Names() {
			last, seen := lastSeen[name]
			if !seen || now.Sub(last) > cooldown {
				independent = true
			}
			lastSeen[name] = now
		}

		rec.Independent = independent
	}
}

// effectiveSpecies resolves the species list the sweep should consider for a
// record: operator-supplied names for manually verified records, a live
// threshold re-filter otherwise.
func effectiveSpecies(rec *detection.Record, thresholds conf.ThresholdMap) detection.SpeciesList {
	if rec.Verification == detection.ManuallyVerified {
		return rec.Species
	}
	return tallyRecord(rec, thresholds).speciesList()
}
