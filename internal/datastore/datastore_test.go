package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakin721/Neri/internal/conf"
	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/taxonomy"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "occurrences.db")

	store, ok := New(settings).(*SQLiteStore)
	require.True(t, ok)
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func testOccurrence(filename, species string, independent bool) Occurrence {
	return Occurrence{
		Filename:      filename,
		Format:        "JPG",
		CaptureDate:   "2024-05-10",
		CaptureTime:   "08:15:30",
		WorkingDays:   1,
		SpeciesNames:  species,
		SpeciesTypes:  "兽",
		SpeciesCounts: "1",
		MinConfidence: "0.412",
		Independent:   independent,
	}
}

func TestNewDisabledReturnsNil(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	assert.Nil(t, New(settings))
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true

	store := &SQLiteStore{Settings: settings}
	assert.Error(t, store.Open())
}

func TestSaveBatchAndGetBatch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	batch := []Occurrence{
		testOccurrence("IMG_0043.jpg", "狐狸", false),
		testOccurrence("IMG_0042.jpg", "马鹿", true),
	}
	require.NoError(t, store.SaveBatch("batch-1", batch))

	got, err := store.GetBatch("batch-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Rows come back in filename order regardless of insert order.
	assert.Equal(t, "IMG_0042.jpg", got[0].Filename)
	assert.Equal(t, "IMG_0043.jpg", got[1].Filename)
	assert.Equal(t, "batch-1", got[0].BatchID)
	assert.Equal(t, "马鹿", got[0].SpeciesNames)
	assert.True(t, got[0].Independent)
	assert.False(t, got[0].CreatedAt.IsZero())

	other, err := store.GetBatch("batch-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGetAllOccurrencesSpansBatches(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	require.NoError(t, store.SaveBatch("batch-1", []Occurrence{
		testOccurrence("IMG_0001.jpg", "马鹿", true),
	}))
	require.NoError(t, store.SaveBatch("batch-2", []Occurrence{
		testOccurrence("IMG_0002.jpg", "狐狸", true),
	}))

	all, err := store.GetAllOccurrences()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIndependentCountBySpecies(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	require.NoError(t, store.SaveBatch("batch-1", []Occurrence{
		testOccurrence("IMG_0001.jpg", "马鹿", true),
		testOccurrence("IMG_0002.jpg", "马鹿", false),
		testOccurrence("IMG_0003.jpg", "马鹿", true),
		testOccurrence("IMG_0004.jpg", "狐狸", true),
	}))
	// A second batch must not leak into the first batch's counts.
	require.NoError(t, store.SaveBatch("batch-2", []Occurrence{
		testOccurrence("IMG_0005.jpg", "马鹿", true),
	}))

	counts, err := store.IndependentCountBySpecies("batch-1")
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"马鹿": 2, "狐狸": 1}, counts)
}

func TestNewOccurrenceProjection(t *testing.T) {
	t.Parallel()

	rec := &detection.Record{
		Filename:         "IMG_0042.jpg",
		Format:           "JPG",
		CaptureTimestamp: time.Date(2024, 5, 10, 8, 15, 30, 0, time.Local),
		Species:          detection.NewSpeciesList("马鹿"),
		Counts:           detection.NewCountList(2),
		SpeciesTypes:     []string{taxonomy.TypeMammal},
		MinConfidence:    detection.AutoConfidence(0.412),
		WorkingDays:      3,
		Independent:      true,
		Remark:           "river crossing",
		Verification:     detection.ManuallyVerified,
	}

	occ := NewOccurrence("batch-1", rec)

	assert.Equal(t, "batch-1", occ.BatchID)
	assert.Equal(t, "IMG_0042.jpg", occ.Filename)
	assert.Equal(t, "2024-05-10", occ.CaptureDate)
	assert.Equal(t, "08:15:30", occ.CaptureTime)
	assert.Equal(t, 3, occ.WorkingDays)
	assert.Equal(t, "马鹿", occ.SpeciesNames)
	assert.Equal(t, "兽", occ.SpeciesTypes)
	assert.Equal(t, "2", occ.SpeciesCounts)
	assert.Equal(t, "0.412", occ.MinConfidence)
	assert.True(t, occ.Independent)
	assert.True(t, occ.ManuallyVerified)
}

func TestNewOccurrenceEmptyRecordKeepsSentinels(t *testing.T) {
	t.Parallel()

	occ := NewOccurrence("batch-1", &detection.Record{Filename: "IMG_0001.jpg"})

	assert.Equal(t, "空", occ.SpeciesNames)
	assert.Equal(t, "空", occ.SpeciesCounts)
	assert.Empty(t, occ.MinConfidence)
	assert.Empty(t, occ.CaptureDate)
	assert.False(t, occ.ManuallyVerified)
}
