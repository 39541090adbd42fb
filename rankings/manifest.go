package rankings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ErrManifestNotFound is returned when the rankings directory has no
// metadata.json. A year missing from a loaded manifest is not an error.
var ErrManifestNotFound = fmt.Errorf("rankings manifest not found")

// CategoryFile names one DGRSDT category and its spreadsheet. The manifest
// lists categories as an ordered array because scan order decides ties and
// JSON object keys carry no order.
type CategoryFile struct {
	Category string `json:"category"`
	Path     string `json:"path"`
}

// Manifest maps ranking type and year to the local reference files.
type Manifest struct {
	Scimago map[string]string         `json:"scimago"`
	Core    map[string]string         `json:"core"`
	DGRSDT  map[string][]CategoryFile `json:"dgrsdt"`

	dir string
}

// LoadManifest reads metadata.json from the rankings directory. Relative
// file paths inside the manifest resolve against that directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "metadata.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("reading rankings manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing rankings manifest: %w", err)
	}
	m.dir = dir
	return &m, nil
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}

// ScimagoFile returns the Scimago CSV for a year, or "" when the manifest
// lists none.
func (m *Manifest) ScimagoFile(year int) string {
	path, ok := m.Scimago[strconv.Itoa(year)]
	if !ok {
		return ""
	}
	return m.resolve(path)
}

// CoreFile returns the CORE list applicable to a publication year: the
// latest listed year at or before it, or the earliest listed year when the
// publication predates every list. The chosen list year is returned too.
func (m *Manifest) CoreFile(pubYear int) (string, int) {
	years := make([]int, 0, len(m.Core))
	for y := range m.Core {
		n, err := strconv.Atoi(y)
		if err != nil {
			continue
		}
		years = append(years, n)
	}
	if len(years) == 0 {
		return "", 0
	}
	sort.Ints(years)

	chosen := years[0]
	for _, y := range years {
		if y <= pubYear {
			chosen = y
		}
	}
	return m.resolve(m.Core[strconv.Itoa(chosen)]), chosen
}

// DGRSDTFiles returns the ordered category files for a year, or nil when
// the manifest lists none.
func (m *Manifest) DGRSDTFiles(year int) []CategoryFile {
	files, ok := m.DGRSDT[strconv.Itoa(year)]
	if !ok {
		return nil
	}
	out := make([]CategoryFile, len(files))
	for i, f := range files {
		out[i] = CategoryFile{Category: f.Category, Path: m.resolve(f.Path)}
	}
	return out
}
