// artifact.go: codec for the per-image JSON artifact, the persisted contract
// between the external detector and the engine.
package detection

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wakin721/Neri/internal/errors"
)

// SupportedImageExtensions lists the source image extensions matched when
// pairing an artifact with its original image.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp"}

// artifactBox mirrors one entry of the 检测框 array.
type artifactBox struct {
	Species    string    `json:"物种"`
	Confidence float64   `json:"置信度"`
	BBox       []float64 `json:"边界框"`
}

// artifactFile mirrors the on-disk artifact. Keys are fixed by the legacy
// format and must not change. all_classes is float-encoded in JSON because
// the detector serializes tensor output directly.
type artifactFile struct {
	SpeciesNames   string            `json:"物种名称"`
	SpeciesCounts  string            `json:"物种数量"`
	MinConfidence  string            `json:"最低置信度"`
	DetectionTime  string            `json:"检测时间"`
	Remark         string            `json:"备注,omitempty"`
	Boxes          []artifactBox     `json:"检测框"`
	AllConfidences []float64         `json:"all_confidences"`
	AllClasses     []float64         `json:"all_classes"`
	NamesMap       map[string]string `json:"names_map"`
}

// LoadArtifact reads one per-image artifact into a Record. The record's
// filename is the artifact base name; image metadata is left for the caller
// to merge.
func LoadArtifact(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}

	var af artifactFile
	if err := json.Unmarshal(data, &af); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}

	rec := &Record{
		Filename:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Species:       ParseSpeciesList(af.SpeciesNames),
		Counts:        ParseCountList(af.SpeciesCounts),
		MinConfidence: ParseConfidence(af.MinConfidence),
		DetectionTime: af.DetectionTime,
		Remark:        af.Remark,
		ClassNames:    af.NamesMap,
	}

	if rec.MinConfidence.IsManual() {
		rec.Verification = ManuallyVerified
	}

	for _, b := range af.Boxes {
		box := Box{Species: b.Species, Confidence: b.Confidence}
		copy(box.BBox[:], b.BBox)
		rec.Boxes = append(rec.Boxes, box)
	}

	rec.AllConfidences = af.AllConfidences
	rec.AllClasses = make([]int, 0, len(af.AllClasses))
	for _, c := range af.AllClasses {
		rec.AllClasses = append(rec.AllClasses, int(c))
	}

	return rec, nil
}

// SaveArtifact writes the record back to its per-image artifact, preserving
// the legacy key set and sentinels.
func SaveArtifact(rec *Record, path string) error {
	af := artifactFile{
		SpeciesNames:   rec.Species.String(),
		SpeciesCounts:  rec.Counts.String(),
		MinConfidence:  rec.MinConfidence.String(),
		DetectionTime:  rec.DetectionTime,
		Remark:         rec.Remark,
		NamesMap:       rec.ClassNames,
		AllConfidences: rec.AllConfidences,
		Boxes:          []artifactBox{},
	}
	// The sentinel for a record with no qualifying detections is 空 in the
	// name and count fields but an empty confidence string; String() on the
	// tagged types already produces exactly that.

	af.AllClasses = make([]float64, 0, len(rec.AllClasses))
	for _, c := range rec.AllClasses {
		af.AllClasses = append(af.AllClasses, float64(c))
	}

	for _, b := range rec.Boxes {
		af.Boxes = append(af.Boxes, artifactBox{
			Species:    b.Species,
			Confidence: b.Confidence,
			BBox:       b.BBox[:],
		})
	}

	data, err := json.MarshalIndent(&af, "", "    ")
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return nil
}

// ArtifactPath returns the artifact path for an image filename inside dir.
func ArtifactPath(dir, imageFilename string) string {
	base := strings.TrimSuffix(imageFilename, filepath.Ext(imageFilename))
	return filepath.Join(dir, base+".json")
}

// findSourceImage locates the original image for an artifact base name,
// trying each supported extension in order.
func findSourceImage(sourceDir, baseName string) (string, bool) {
	for _, ext := range SupportedImageExtensions {
		candidate := filepath.Join(sourceDir, baseName+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// LoadBatch loads every artifact in artifactDir, pairs each with its source
// image in sourceDir and merges the image metadata. Artifacts without a
// matching image are skipped with a warning; a completely empty artifact
// directory is an error because nothing downstream can run without records.
func LoadBatch(artifactDir, sourceDir string, meta MetadataProvider) ([]*Record, error) {
	entries, err := os.ReadDir(artifactDir)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			FileContext(artifactDir).
			Build()
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		if e.Name() == ValidationFilename {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, errors.Newf("no detection artifacts found in %s", artifactDir).
			Category(errors.CategoryFileParsing).
			FileContext(artifactDir).
			Build()
	}

	var records []*Record
	for _, name := range names {
		baseName := strings.TrimSuffix(name, filepath.Ext(name))

		imagePath, found := findSourceImage(sourceDir, baseName)
		if !found {
			slog.Warn("source image not found for artifact, skipping",
				"artifact", name, "source_dir", sourceDir)
			continue
		}

		rec, err := LoadArtifact(filepath.Join(artifactDir, name))
		if err != nil {
			slog.Error("failed to load detection artifact, skipping",
				"artifact", name, "error", err)
			continue
		}

		rec.Filename = filepath.Base(imagePath)

		md, err := meta.Extract(imagePath)
		if err != nil {
			// Metadata gaps degrade to a record without a timestamp.
			slog.Warn("failed to extract image metadata",
				"image", rec.Filename, "error", err)
		} else {
			rec.Format = md.Format
			rec.CaptureTimestamp = md.CaptureTimestamp
		}

		records = append(records, rec)
	}

	return records, nil
}
