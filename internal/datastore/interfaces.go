// interfaces.go: defines the interface for occurrence database operations
package datastore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/wakin721/Neri/internal/conf"
)

// Interface abstracts the underlying database implementation.
type Interface interface {
	Open() error
	Close() error
	SaveBatch(batchID string, occurrences []Occurrence) error
	GetBatch(batchID string) ([]Occurrence, error)
	GetAllOccurrences() ([]Occurrence, error)
	IndependentCountBySpecies(batchID string) (map[string]int64, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a store based on the output settings, or nil when database
// materialization is disabled.
func New(settings *conf.Settings) Interface {
	if settings.Output.SQLite.Enabled {
		return &SQLiteStore{Settings: settings}
	}
	return nil
}

// SaveBatch stores a batch of occurrence rows in a single transaction.
func (ds *DataStore) SaveBatch(batchID string, occurrences []Occurrence) error {
	tx := ds.DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("starting transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for i := range occurrences {
		occurrences[i].BatchID = batchID
		if err := tx.Create(&occurrences[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("saving occurrence: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetBatch returns the occurrence rows of one batch in filename order.
func (ds *DataStore) GetBatch(batchID string) ([]Occurrence, error) {
	var occurrences []Occurrence
	err := ds.DB.Where("batch_id = ?", batchID).
		Order("filename").
		Find(&occurrences).Error
	if err != nil {
		return nil, fmt.Errorf("getting batch %s: %w", batchID, err)
	}
	return occurrences, nil
}

// GetAllOccurrences returns every stored occurrence row.
func (ds *DataStore) GetAllOccurrences() ([]Occurrence, error) {
	var occurrences []Occurrence
	if err := ds.DB.Find(&occurrences).Error; err != nil {
		return nil, fmt.Errorf("getting occurrences: %w", err)
	}
	return occurrences, nil
}

// IndependentCountBySpecies returns, for one batch, how many independent
// detection events each species-name value has.
func (ds *DataStore) IndependentCountBySpecies(batchID string) (map[string]int64, error) {
	type row struct {
		SpeciesNames string
		Count        int64
	}
	var rows []row

	err := ds.DB.Model(&Occurrence{}).
		Select("species_names, count(*) as count").
		Where("batch_id = ? AND independent = ?", batchID, true).
		Group("species_names").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting independent events: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.SpeciesNames] = r.Count
	}
	return counts, nil
}
