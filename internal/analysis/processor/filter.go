// filter.go: confidence-threshold species filtering. Converts a record's raw
// per-box detections into a per-species qualifying count using the threshold
// map, with first-seen species order preserved.
package processor

import (
	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/detection"
)

// speciesTally accumulates per-species qualifying-box counts in first-seen
// order, keeping species/count alignment deterministic.
type speciesTally struct {
	order  []string
	counts map[string]int

	minConf    float64
	hasMinConf bool
}

func newSpeciesTally() *speciesTally {
	return &speciesTally{counts: make(map[string]int)}
}

func (st *speciesTally) add(species string, confidence float64) {
	if _, seen := st.counts[species]; !seen {
		st.order = append(st.order, species)
	}
	st.counts[species]++
	if !st.hasMinConf || confidence < st.minConf {
		st.minConf = confidence
		st.hasMinConf = true
	}
}

func (st *speciesTally) isEmpty() bool { return len(st.order) == 0 }

func (st *speciesTally) speciesList() detection.SpeciesList {
	return detection.NewSpeciesList(st.order...)
}

func (st *speciesTally) countList() detection.CountList {
	counts := make([]int, len(st.order))
	for i, s := range st.order {
		counts[i] = st.counts[s]
	}
	return detection.NewCountList(counts...)
}

// tallyRecord filters the record's raw detections against the threshold map.
// Boxes whose class id resolves to no species name are skipped; a box counts
// toward its species when its confidence is at or above the effective
// threshold. Missing or misaligned raw arrays yield an empty tally.
func tallyRecord(rec *detection.Record, thresholds conf.ThresholdMap) *speciesTally {
	st := newSpeciesTally()
	if !rec.HasRawDetections() {
		return st
	}

	for i, classID := range rec.AllClasses {
		species, ok := rec.SpeciesNameForClass(classID)
		if !ok {
			continue
		}
		confidence := rec.AllConfidences[i]
		if confidence >= thresholds.Lookup(species) {
			st.add(species, confidence)
		}
	}
	return st
}

// ApplyThresholds derives the record's species names, per-species counts and
// minimum qualifying confidence from its raw detections. Manually verified
// records are left untouched: the operator-supplied fields take precedence
// over any threshold map. Records with no qualifying detections degrade to
// the empty state rather than failing.
func (p *Processor) ApplyThresholds(rec *detection.Record) {
	FilterRecord(rec, p.Settings.Thresholds)
}

// FilterRecord is the threshold filter with an explicit threshold map,
// mutating the record in place.
func FilterRecord(rec *detection.Record, thresholds conf.ThresholdMap) {
	if rec.Verification == detection.ManuallyVerified {
		return
	}

	st := tallyRecord(rec, thresholds)
	if st.isEmpty() {
		rec.ClearDerived()
		return
	}

	rec.Species = st.speciesList()
	rec.Counts = st.countList()
	rec.MinConfidence = detection.AutoConfidence(st.minConf)
}
