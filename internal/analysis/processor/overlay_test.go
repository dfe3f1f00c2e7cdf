// overlay_test.go: unit tests for the operator-correction overlay
package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/errors"
)

var correctionTime = time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)

// filteredRecord builds a record that already went through the filter.
func filteredRecord() *detection.Record {
	return &detection.Record{
		Filename:       "IMG_0001.jpg",
		Species:        detection.NewSpeciesList("Deer", "Fox"),
		Counts:         detection.NewCountList(2, 3),
		MinConfidence:  detection.AutoConfidence(0.6),
		AllClasses:     []int{0, 1},
		AllConfidences: []float64{0.9, 0.6},
		ClassNames:     map[string]string{"0": "Deer", "1": "Fox"},
		Boxes:          []detection.Box{{Species: "Deer", Confidence: 0.9}},
	}
}

func TestCorrectionSetsManualState(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	err := ApplyCorrection(rec, Correction{Species: "狐狸", Count: "2"}, correctionTime)
	require.NoError(t, err)

	assert.Equal(t, detection.ManuallyVerified, rec.Verification)
	assert.Equal(t, "狐狸", rec.Species.String())
	assert.Equal(t, "2", rec.Counts.String())
	assert.Equal(t, detection.ManualMarker, rec.MinConfidence.String())
	assert.Equal(t, "2024-05-10 12:30:00("+detection.ManualMarker+")", rec.DetectionTime)
}

func TestCorrectionBlankCountSumsPriorCounts(t *testing.T) {
	t.Parallel()

	rec := filteredRecord() // prior counts 2,3
	err := ApplyCorrection(rec, Correction{Species: "Deer"}, correctionTime)
	require.NoError(t, err)

	assert.Equal(t, "5", rec.Counts.String())
}

func TestCorrectionBlankCountFallsBackToOne(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	rec.Counts = detection.CountList{}

	err := ApplyCorrection(rec, Correction{Species: "Deer"}, correctionTime)
	require.NoError(t, err)

	assert.Equal(t, "1", rec.Counts.String())
}

func TestCorrectionEmptySentinelCount(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	err := ApplyCorrection(rec, Correction{Species: "Deer", Count: detection.EmptySentinel}, correctionTime)
	require.NoError(t, err)

	assert.Equal(t, detection.EmptySentinel, rec.Counts.String())
}

func TestCorrectionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		correction Correction
	}{
		{"empty species", Correction{Species: "   "}},
		{"non-numeric count", Correction{Species: "Deer", Count: "two"}},
		{"zero count", Correction{Species: "Deer", Count: "0"}},
		{"negative count", Correction{Species: "Deer", Count: "3,-1"}},
		{"trailing comma", Correction{Species: "Deer", Count: "3,"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := filteredRecord()
			before := *rec

			err := ApplyCorrection(rec, tt.correction, correctionTime)

			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			// The record must be left unmodified on rejection.
			assert.Equal(t, before.Species.String(), rec.Species.String())
			assert.Equal(t, before.Counts.String(), rec.Counts.String())
			assert.Equal(t, before.Verification, rec.Verification)
		})
	}
}

func TestCorrectionCountLengthNotCrossValidated(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	err := ApplyCorrection(rec, Correction{Species: "Deer", Count: "5,2,7"}, correctionTime)
	require.NoError(t, err)

	assert.Equal(t, "Deer", rec.Species.String())
	assert.Equal(t, "5,2,7", rec.Counts.String())
}

func TestCorrectionClearsBoxesOnSpeciesChange(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	err := ApplyCorrection(rec, Correction{Species: "狐狸", Count: "1"}, correctionTime)
	require.NoError(t, err)

	assert.Empty(t, rec.Boxes)
}

func TestCorrectionClearsBoxesOnEmptySpecies(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	err := ApplyCorrection(rec, Correction{Species: detection.EmptySentinel}, correctionTime)
	require.NoError(t, err)

	assert.True(t, rec.Species.IsEmpty())
	assert.Empty(t, rec.Boxes)
}

func TestCorrectionKeepsBoxesWhenSpeciesUnchanged(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	err := ApplyCorrection(rec, Correction{Species: "Deer,Fox", Count: "2,3"}, correctionTime)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.Boxes)
}

func TestCorrectionStructurallyIdempotent(t *testing.T) {
	t.Parallel()

	rec := filteredRecord()
	c := Correction{Species: "狐狸", Count: "2", Remark: "night shot"}

	require.NoError(t, ApplyCorrection(rec, c, correctionTime))
	first := *rec

	require.NoError(t, ApplyCorrection(rec, c, correctionTime.Add(time.Hour)))

	assert.Equal(t, first.Species.String(), rec.Species.String())
	assert.Equal(t, first.Counts.String(), rec.Counts.String())
	assert.Equal(t, first.Remark, rec.Remark)
	// Only the correction timestamp advances.
	assert.NotEqual(t, first.DetectionTime, rec.DetectionTime)
}
