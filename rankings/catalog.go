package rankings

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Catalog gives access to the local ranking reference files. It is built
// once per batch run and caches every parsed file for the lifetime of the
// run, replacing ad-hoc re-reads with an explicit load-once object.
type Catalog struct {
	manifest *Manifest
	logger   *zap.Logger

	mu        sync.Mutex
	fileCache map[string][][]string
}

// OpenCatalog loads the manifest from dir and returns a ready catalog.
func OpenCatalog(dir string, logger *zap.Logger) (*Catalog, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		manifest:  m,
		logger:    logger,
		fileCache: make(map[string][][]string),
	}, nil
}

// Manifest exposes the loaded manifest.
func (c *Catalog) Manifest() *Manifest {
	return c.manifest
}

// csvRows parses a CSV file with the given delimiter, caching the result.
func (c *Catalog) csvRows(path string, comma rune) ([][]string, error) {
	c.mu.Lock()
	if rows, ok := c.fileCache[path]; ok {
		c.mu.Unlock()
		return rows, nil
	}
	c.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ranking file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing ranking file %s: %w", path, err)
	}

	c.mu.Lock()
	c.fileCache[path] = rows
	c.mu.Unlock()
	return rows, nil
}

// xlsxRows parses the first sheet of a spreadsheet, caching the result.
func (c *Catalog) xlsxRows(path string) ([][]string, error) {
	c.mu.Lock()
	if rows, ok := c.fileCache[path]; ok {
		c.mu.Unlock()
		return rows, nil
	}
	c.mu.Unlock()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet %s: %w", path, err)
	}

	c.mu.Lock()
	c.fileCache[path] = rows
	c.mu.Unlock()
	return rows, nil
}

func (c *Catalog) warnFile(path string, err error) {
	c.logger.Warn("Ranking reference file unusable, treating as no data.",
		zap.String("path", path), zap.Error(err))
}
