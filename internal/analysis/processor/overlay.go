// overlay.go: the operator-correction overlay. Corrections supersede the
// derived record while keeping the raw detections' provenance rules intact.
package processor

import (
	"strconv"
	"strings"
	"time"

	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/errors"
)

// Correction is one operator correction for a record. Species is required;
// a blank Count means the operator left the field empty, in which case the
// sum of the record's pre-existing counts is substituted so operators are
// not forced to re-tally.
type Correction struct {
	Species string
	Count   string
	Remark  string
}

// ApplyCorrection validates and applies a correction to the record. On a
// validation error the record is left unmodified. Applying an identical
// correction twice yields identical stored state except for the correction
// timestamp, which always advances.
func (p *Processor) ApplyCorrection(rec *detection.Record, c Correction) error {
	if err := ApplyCorrection(rec, c, time.Now()); err != nil {
		return err
	}
	// Only the type classification is re-derived from the corrected names;
	// names and counts are now owned by the operator.
	p.ClassifyRecord(rec)
	return nil
}

// ApplyCorrection applies a correction at the given time. It is exposed at
// package level so record-only callers can correct without a full processor.
func ApplyCorrection(rec *detection.Record, c Correction, now time.Time) error {
	speciesStr := strings.TrimSpace(c.Species)
	if speciesStr == "" {
		return errors.ValidationError("species name must not be empty")
	}

	countStr := strings.TrimSpace(c.Count)
	if countStr == "" {
		countStr = fallbackCount(rec)
	}

	counts, err := parseCorrectionCount(countStr)
	if err != nil {
		return err
	}

	newSpecies := detection.ParseSpeciesList(speciesStr)
	speciesChanged := newSpecies.String() != rec.Species.String()

	rec.Species = newSpecies
	rec.Counts = counts
	rec.Remark = strings.TrimSpace(c.Remark)

	rec.Verification = detection.ManuallyVerified
	rec.MinConfidence = detection.ManualConfidence()
	rec.DetectionTime = now.Format(detection.DetectionTimeLayout) + "(" + detection.ManualMarker + ")"

	// Raw bounding boxes no longer correspond to the corrected label once
	// the species is cleared or renamed.
	if newSpecies.IsEmpty() || speciesChanged {
		rec.Boxes = nil
	}

	return nil
}

// fallbackCount derives the count an operator left blank: the sum of the
// record's pre-existing per-species counts, or 1 when none parse.
func fallbackCount(rec *detection.Record) string {
	if rec.Counts.IsEmpty() {
		return "1"
	}
	return strconv.Itoa(rec.Counts.Sum())
}

// parseCorrectionCount validates the operator count input: the 空 sentinel,
// or a comma-separated list of strictly positive integers. The list length
// is deliberately not cross-validated against the species list.
func parseCorrectionCount(countStr string) (detection.CountList, error) {
	if countStr == detection.EmptySentinel {
		return detection.CountList{}, nil
	}

	var counts []int
	for _, part := range strings.Split(countStr, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return detection.CountList{}, errors.ValidationError(
				"species count must be the %s sentinel or comma-separated positive integers, got %q",
				detection.EmptySentinel, countStr)
		}
		if v <= 0 {
			return detection.CountList{}, errors.ValidationError(
				"species count entries must be positive, got %d", v)
		}
		counts = append(counts, v)
	}
	return detection.NewCountList(counts...), nil
}
