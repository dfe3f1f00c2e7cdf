package detection

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleArtifact mirrors what the external detector writes for one image.
const sampleArtifact = `{
    "物种名称": "马鹿,狐狸",
    "物种数量": "2,1",
    "最低置信度": "0.412",
    "检测时间": "2024-05-10 08:15:30",
    "检测框": [
        {"物种": "马鹿", "置信度": 0.91, "边界框": [10.0, 20.0, 300.0, 400.0]},
        {"物种": "狐狸", "置信度": 0.412, "边界框": [50.0, 60.0, 120.0, 200.0]}
    ],
    "all_confidences": [0.91, 0.88, 0.412],
    "all_classes": [3.0, 3.0, 7.0],
    "names_map": {"3": "马鹿", "7": "狐狸"}
}`

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadArtifact(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, t.TempDir(), "IMG_0042.json", sampleArtifact)

	rec, err := LoadArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, "IMG_0042", rec.Filename)
	assert.Equal(t, Automatic, rec.Verification)
	assert.Equal(t, "马鹿,狐狸", rec.Species.String())
	assert.Equal(t, "2,1", rec.Counts.String())
	assert.Equal(t, "0.412", rec.MinConfidence.String())
	assert.Equal(t, "2024-05-10 08:15:30", rec.DetectionTime)

	// Float-encoded class ids must decode to ints resolvable in the map.
	assert.Equal(t, []int{3, 3, 7}, rec.AllClasses)
	name, ok := rec.SpeciesNameForClass(3)
	require.True(t, ok)
	assert.Equal(t, "马鹿", name)

	require.Len(t, rec.Boxes, 2)
	assert.Equal(t, "马鹿", rec.Boxes[0].Species)
	assert.Equal(t, [4]float64{10, 20, 300, 400}, rec.Boxes[0].BBox)
}

func TestLoadArtifactManuallyVerified(t *testing.T) {
	t.Parallel()

	content := `{
        "物种名称": "狐狸",
        "物种数量": "1",
        "最低置信度": "人工校验",
        "检测时间": "2024-05-11 09:00:00(人工校验)",
        "检测框": [],
        "all_confidences": [0.9],
        "all_classes": [3.0],
        "names_map": {"3": "马鹿"}
    }`
	path := writeArtifact(t, t.TempDir(), "IMG_0001.json", content)

	rec, err := LoadArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, ManuallyVerified, rec.Verification)
	assert.True(t, rec.MinConfidence.IsManual())
	assert.Equal(t, "狐狸", rec.Species.String())
}

func TestSaveArtifactRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeArtifact(t, dir, "IMG_0042.json", sampleArtifact)

	rec, err := LoadArtifact(path)
	require.NoError(t, err)

	rec.Remark = "river crossing"
	outPath := filepath.Join(dir, "out.json")
	require.NoError(t, SaveArtifact(rec, outPath))

	reloaded, err := LoadArtifact(outPath)
	require.NoError(t, err)

	assert.Equal(t, rec.Species.String(), reloaded.Species.String())
	assert.Equal(t, rec.Counts.String(), reloaded.Counts.String())
	assert.Equal(t, rec.MinConfidence.String(), reloaded.MinConfidence.String())
	assert.Equal(t, rec.AllClasses, reloaded.AllClasses)
	assert.Equal(t, "river crossing", reloaded.Remark)
}

func TestSaveArtifactEmptyRecordKeepsSentinels(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &Record{Filename: "IMG_0002"}
	path := filepath.Join(dir, "IMG_0002.json")
	require.NoError(t, SaveArtifact(rec, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// No-species records serialize the 空 sentinel in the name and count
	// fields with an empty confidence string.
	assert.Contains(t, string(data), `"物种名称": "空"`)
	assert.Contains(t, string(data), `"物种数量": "空"`)
	assert.Contains(t, string(data), `"最低置信度": ""`)
}

func TestLoadArtifactCorruptJSON(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, t.TempDir(), "bad.json", "{not json")

	_, err := LoadArtifact(path)
	assert.Error(t, err)
}

func TestLoadBatchPairsArtifactsWithImages(t *testing.T) {
	t.Parallel()

	artifactDir := t.TempDir()
	sourceDir := t.TempDir()

	writeArtifact(t, artifactDir, "IMG_0042.json", sampleArtifact)
	writeArtifact(t, artifactDir, "orphan.json", sampleArtifact)
	// The validation state file must not be treated as an artifact.
	writeArtifact(t, artifactDir, ValidationFilename, `{"IMG_0042.jpg": true}`)

	imagePath := filepath.Join(sourceDir, "IMG_0042.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("fake image"), 0o644))
	captureTime := time.Date(2024, 5, 10, 8, 15, 30, 0, time.Local)
	require.NoError(t, os.Chtimes(imagePath, captureTime, captureTime))

	records, err := LoadBatch(artifactDir, sourceDir, FileInfoMetadata{})
	require.NoError(t, err)

	// The orphan artifact has no source image and is skipped.
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "IMG_0042.jpg", rec.Filename)
	assert.Equal(t, "JPG", rec.Format)
	assert.True(t, rec.CaptureTimestamp.Equal(captureTime))
}

func TestLoadBatchEmptyArtifactDir(t *testing.T) {
	t.Parallel()

	_, err := LoadBatch(t.TempDir(), t.TempDir(), FileInfoMetadata{})
	assert.Error(t, err)
}
