// Package taxonomy classifies species names into coarse types using a
// reference bird-name list and a fixed set of personnel aliases. Anything in
// neither set is a mammal, the default bucket for unrecognized names.
package taxonomy

import (
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wakin721/Neri/internal/detection"
	"github.com/wakin721/Neri/internal/errors"
)

// Coarse species types. The strings are part of the export contract.
const (
	TypePersonnel = "人员"
	TypeBird      = "鸟"
	TypeMammal    = "兽"
)

// DefaultPersonnelAliases are the species names treated as personnel when the
// configuration does not override them.
var DefaultPersonnelAliases = []string{"人", "牧民", "人员"}

// Taxonomy holds the loaded reference sets.
type Taxonomy struct {
	birdNames map[string]struct{}
	personnel map[string]struct{}
}

// New builds a taxonomy from a bird-name set and personnel aliases.
func New(birdNames []string, personnelAliases []string) *Taxonomy {
	t := &Taxonomy{
		birdNames: make(map[string]struct{}, len(birdNames)),
		personnel: make(map[string]struct{}, len(personnelAliases)),
	}
	for _, n := range birdNames {
		n = strings.TrimSpace(n)
		if n != "" {
			t.birdNames[n] = struct{}{}
		}
	}
	if len(personnelAliases) == 0 {
		personnelAliases = DefaultPersonnelAliases
	}
	for _, a := range personnelAliases {
		a = strings.TrimSpace(a)
		if a != "" {
			t.personnel[a] = struct{}{}
		}
	}
	return t
}

// Load reads the reference bird list from a spreadsheet. Bird names are
// taken from the third column of the first sheet. A missing or unreadable
// list degrades to an empty bird set, classifying every non-personnel
// species as mammal, and is logged rather than raised.
func Load(birdListPath string, personnelAliases []string) *Taxonomy {
	names, err := readBirdList(birdListPath)
	if err != nil {
		slog.Warn("failed to load reference bird list, bird classification disabled",
			"path", birdListPath, "error", err)
	}
	return New(names, personnelAliases)
}

func readBirdList(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryTaxonomy).
			FileContext(path).
			Build()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Debug("failed to close bird list workbook", "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Newf("bird list workbook has no sheets").
			Category(errors.CategoryTaxonomy).
			FileContext(path).
			Build()
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}

	var names []string
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			names = append(names, strings.TrimSpace(row[2]))
		}
	}
	return names, nil
}

// BirdCount returns the number of loaded reference bird names.
func (t *Taxonomy) BirdCount() int { return len(t.birdNames) }

// TypeOf classifies a single species name.
func (t *Taxonomy) TypeOf(species string) string {
	species = strings.TrimSpace(species)
	if _, ok := t.personnel[species]; ok {
		return TypePersonnel
	}
	if _, ok := t.birdNames[species]; ok {
		return TypeBird
	}
	return TypeMammal
}

// ClassifyTypes maps a species list to its distinct coarse types,
// lexicographically sorted. Type is presence-of-category, not per-species
// granularity: two mammal species yield a single 兽 entry. An empty species
// list yields an empty slice. Classification never consults confidences, so
// it applies identically to filtered and operator-corrected species lists.
func (t *Taxonomy) ClassifyTypes(species detection.SpeciesList) []string {
	if species.IsEmpty() {
		return nil
	}

	seen := make(map[string]struct{}, 3)
	for _, name := range species.Names() {
		seen[t.TypeOf(name)] = struct{}{}
	}

	types := make([]string, 0, len(seen))
	for typ := range seen {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// TypeString renders a classified type slice for the export boundary.
func TypeString(types []string) string {
	return strings.Join(types, ",")
}
