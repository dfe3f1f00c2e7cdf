// Package detection provides the domain model for per-image detection
// records and the JSON artifact contract shared with the external detector.
//
// The legacy artifact format encodes "no species" as the literal "空" and a
// manually verified record as the literal "人工校验" in the confidence field.
// Inside this package and everything built on it those sentinels are tagged
// types; the strings only appear when encoding to or decoding from the
// artifact and export boundaries.
package detection

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel strings of the legacy artifact format. They must round-trip
// unchanged so artifacts written by older tool versions stay readable.
const (
	EmptySentinel = "空"    // no species present
	ManualMarker  = "人工校验" // record was corrected by an operator
)

// DetectionTimeLayout is the timestamp layout used in artifacts.
const DetectionTimeLayout = "2006-01-02 15:04:05"

// VerificationState tells whether a record's species fields were derived by
// the pipeline or set by an operator.
type VerificationState int

const (
	Automatic VerificationState = iota
	ManuallyVerified
)

func (v VerificationState) String() string {
	if v == ManuallyVerified {
		return "manually-verified"
	}
	return "automatic"
}

// SpeciesList is an ordered species-name list. A zero-value list is the
// "no species" state and serializes to the 空 sentinel.
type SpeciesList struct {
	names []string
}

// NewSpeciesList builds a list from names, dropping empty entries.
func NewSpeciesList(names ...string) SpeciesList {
	var sl SpeciesList
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && n != EmptySentinel {
			sl.names = append(sl.names, n)
		}
	}
	return sl
}

// ParseSpeciesList decodes a comma-joined species string, treating the 空
// sentinel and blank input as the empty list.
func ParseSpeciesList(s string) SpeciesList {
	s = strings.TrimSpace(s)
	if s == "" || s == EmptySentinel {
		return SpeciesList{}
	}
	return NewSpeciesList(strings.Split(s, ",")...)
}

// IsEmpty reports whether the list holds no species.
func (sl SpeciesList) IsEmpty() bool { return len(sl.names) == 0 }

// Names returns a copy of the species names in order.
func (sl SpeciesList) Names() []string {
	out := make([]string, len(sl.names))
	copy(out, sl.names)
	return out
}

// Len returns the number of species in the list.
func (sl SpeciesList) Len() int { return len(sl.names) }

// String encodes the list for the artifact and export boundary.
func (sl SpeciesList) String() string {
	if sl.IsEmpty() {
		return EmptySentinel
	}
	return strings.Join(sl.names, ",")
}

// CountList is an ordered per-species count list. A zero-value list is the
// "no counts" state and serializes to the 空 sentinel. Its length is not
// cross-validated against the species list; operator corrections may supply
// fewer or more counts than species and that is accepted as-is.
type CountList struct {
	counts []int
}

// NewCountList builds a count list from values.
func NewCountList(counts ...int) CountList {
	if len(counts) == 0 {
		return CountList{}
	}
	out := make([]int, len(counts))
	copy(out, counts)
	return CountList{counts: out}
}

// ParseCountList decodes a comma-joined count string. The 空 sentinel and
// blank input decode to the empty list. Entries that fail integer parsing
// are dropped rather than reported, keeping artifact loading total.
func ParseCountList(s string) CountList {
	s = strings.TrimSpace(s)
	if s == "" || s == EmptySentinel {
		return CountList{}
	}
	var cl CountList
	for _, part := range strings.Split(s, ",") {
		if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			cl.counts = append(cl.counts, v)
		}
	}
	return cl
}

// IsEmpty reports whether the list holds no counts.
func (cl CountList) IsEmpty() bool { return len(cl.counts) == 0 }

// Values returns a copy of the counts in order.
func (cl CountList) Values() []int {
	out := make([]int, len(cl.counts))
	copy(out, cl.counts)
	return out
}

// Sum returns the total of all counts.
func (cl CountList) Sum() int {
	total := 0
	for _, c := range cl.counts {
		total += c
	}
	return total
}

// String encodes the list for the artifact and export boundary.
func (cl CountList) String() string {
	if cl.IsEmpty() {
		return EmptySentinel
	}
	parts := make([]string, len(cl.counts))
	for i, c := range cl.counts {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// ConfidenceState enumerates the states of a record's minimum confidence.
type ConfidenceState int

const (
	ConfidenceUnset ConfidenceState = iota
	ConfidenceAuto
	ConfidenceManual
)

// Confidence is the minimum qualifying confidence of a record, or one of the
// two non-numeric states: unset (no qualifying detections) and manual
// (operator corrected, no model confidence applies).
type Confidence struct {
	state ConfidenceState
	value float64
}

// AutoConfidence builds a model-derived confidence value.
func AutoConfidence(v float64) Confidence {
	return Confidence{state: ConfidenceAuto, value: v}
}

// ManualConfidence builds the operator-corrected confidence state.
func ManualConfidence() Confidence {
	return Confidence{state: ConfidenceManual}
}

// ParseConfidence decodes the artifact representation of a confidence field.
func ParseConfidence(s string) Confidence {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Confidence{}
	case ManualMarker:
		return ManualConfidence()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Confidence{}
	}
	return AutoConfidence(v)
}

// State returns the confidence state.
func (c Confidence) State() ConfidenceState { return c.state }

// IsManual reports whether the record carries the manual-verification marker.
func (c Confidence) IsManual() bool { return c.state == ConfidenceManual }

// Value returns the numeric confidence and whether one is present.
func (c Confidence) Value() (float64, bool) {
	return c.value, c.state == ConfidenceAuto
}

// String encodes the confidence for the artifact and export boundary. The
// numeric state always uses exactly three fractional digits.
func (c Confidence) String() string {
	switch c.state {
	case ConfidenceAuto:
		return fmt.Sprintf("%.3f", c.value)
	case ConfidenceManual:
		return ManualMarker
	default:
		return ""
	}
}

// Box is one raw detector bounding box.
type Box struct {
	Species    string     // translated species name
	Confidence float64    // box confidence
	BBox       [4]float64 // x1, y1, x2, y2 in image pixels
}

// Record is the per-image detection record, the unit every pipeline stage
// operates on. It is created once per image and mutated in place by the
// threshold filter, the classifier, the event tagger and operator
// corrections; it is never deleted.
type Record struct {
	// Identity and external metadata. CaptureTimestamp is the zero time
	// when the source image carried no usable timestamp; such records are
	// excluded from all time-ordered operations.
	Filename         string
	Format           string
	CaptureTimestamp time.Time

	// Raw detector output, the sole source of automatic species
	// derivation. AllConfidences and AllClasses are index-aligned.
	// ClassNames keys are string-typed class ids as persisted in JSON.
	Boxes          []Box
	AllConfidences []float64
	AllClasses     []int
	ClassNames     map[string]string

	// Derived and operator-editable fields.
	Verification  VerificationState
	Species       SpeciesList
	Counts        CountList
	SpeciesTypes  []string // distinct coarse types, lexicographically sorted
	MinConfidence Confidence
	DetectionTime string
	Remark        string

	// Batch-derived fields. WorkingDays is 1-based; zero means no capture
	// date was available. Independent is only meaningful for timestamped
	// records that went through the event tagger.
	WorkingDays int
	Independent bool
}

// HasTimestamp reports whether the record can take part in time-ordered
// operations.
func (r *Record) HasTimestamp() bool {
	return !r.CaptureTimestamp.IsZero()
}

// HasRawDetections reports whether the record carries the aligned raw arrays
// automatic derivation needs.
func (r *Record) HasRawDetections() bool {
	return len(r.AllConfidences) > 0 &&
		len(r.AllClasses) == len(r.AllConfidences) &&
		len(r.ClassNames) > 0
}

// SpeciesNameForClass resolves a raw class id to its display species name.
// The map keys are strings even though the ids are integers; ClassKey is the
// single place that coercion happens.
func (r *Record) SpeciesNameForClass(classID int) (string, bool) {
	name, ok := r.ClassNames[ClassKey(classID)]
	return name, ok
}

// ClassKey normalizes an integer class id into the string key format used by
// the persisted names map.
func ClassKey(classID int) string {
	return strconv.Itoa(classID)
}

// CaptureDate returns the capture date in ISO 8601 format, or "" when the
// record has no timestamp.
func (r *Record) CaptureDate() string {
	if !r.HasTimestamp() {
		return ""
	}
	return r.CaptureTimestamp.Format("2006-01-02")
}

// CaptureTime returns the capture time in 24-hour format, or "" when the
// record has no timestamp.
func (r *Record) CaptureTime() string {
	if !r.HasTimestamp() {
		return ""
	}
	return r.CaptureTimestamp.Format("15:04:05")
}

// ClearDerived resets the record to the "no qualifying detections" state:
// empty species and counts, unset confidence, no types.
func (r *Record) ClearDerived() {
	r.Species = SpeciesList{}
	r.Counts = CountList{}
	r.MinConfidence = Confidence{}
	r.SpeciesTypes = nil
}
