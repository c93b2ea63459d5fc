// Package sqlite persists segmentation catalogs in the catalog
// database. It implements seg.DatasetWriter so the seg package stays
// free of SQL.
package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/segment.report/internal/db"
	"github.com/banshee-data/segment.report/internal/seg"
)

var _ seg.DatasetWriter = (*CatalogStore)(nil)

// Dataset kinds as stored in catalog_datasets.kind.
const (
	kindScalarInt   = "scalar_int"
	kindInt32       = "int32"
	kindInt64       = "int64"
	kindBool        = "bool"
	kindFloat64     = "float64"
	kindRaggedInt32 = "ragged_int32"
)

// CatalogStore writes datasets and run records to the catalog
// database. Writes use REPLACE so re-running a site overwrites the
// previous catalog for that site.
type CatalogStore struct {
	db *db.DB
}

func NewCatalogStore(database *db.DB) *CatalogStore {
	return &CatalogStore{db: database}
}

func (s *CatalogStore) write(path, kind string, payload interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode dataset %s: %w", path, err)
	}
	_, err = s.db.Exec(`
		REPLACE INTO catalog_datasets (path, kind, payload, created_unix_nanos)
		VALUES (?, ?, ?, ?)`,
		path, kind, string(encoded), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("write dataset %s: %w", path, err)
	}
	return nil
}

func (s *CatalogStore) WriteScalarInt(path string, value int64) error {
	return s.write(path, kindScalarInt, value)
}

func (s *CatalogStore) WriteInt32Array(path string, values []int32) error {
	return s.write(path, kindInt32, values)
}

func (s *CatalogStore) WriteInt64Array(path string, values []int64) error {
	return s.write(path, kindInt64, values)
}

func (s *CatalogStore) WriteBoolArray(path string, values []bool) error {
	return s.write(path, kindBool, values)
}

func (s *CatalogStore) WriteFloat64Array(path string, values []float64) error {
	return s.write(path, kindFloat64, values)
}

func (s *CatalogStore) WriteRaggedInt32(path string, values [][]int32) error {
	return s.write(path, kindRaggedInt32, values)
}

// RecordRun stores provenance for one pipeline invocation and returns
// the generated run id.
func (s *CatalogStore) RecordRun(siteID int64, objectSet, sourcePath string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO catalog_runs (run_id, site_id, object_set, source_path, created_unix_nanos)
		VALUES (?, ?, ?, ?, ?)`,
		runID, siteID, objectSet, sourcePath, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("record run for site %d: %w", siteID, err)
	}
	return runID, nil
}

// Dataset is one stored catalog entry with its payload still encoded.
type Dataset struct {
	Path    string
	Kind    string
	Payload string
}

// ReadDataset fetches a single dataset by path. Returns sql.ErrNoRows
// when the path has never been written.
func (s *CatalogStore) ReadDataset(path string) (*Dataset, error) {
	row := s.db.QueryRow(`
		SELECT path, kind, payload FROM catalog_datasets WHERE path = ?`, path)
	var d Dataset
	if err := row.Scan(&d.Path, &d.Kind, &d.Payload); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDatasets returns every dataset whose path begins with prefix,
// ordered by path. An empty prefix lists the whole catalog.
func (s *CatalogStore) ListDatasets(prefix string) ([]Dataset, error) {
	rows, err := s.db.Query(`
		SELECT path, kind, payload FROM catalog_datasets
		WHERE path LIKE ? || '%' ORDER BY path`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.Path, &d.Kind, &d.Payload); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}
