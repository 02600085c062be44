// Package dataset turns parsed rows into the immutable record set the
// dashboard works on. It owns the price-column heuristic, the record
// normalizer and the dataset-shape check.
package dataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// ErrMalformedInput is returned when the input has no header or no data row.
var ErrMalformedInput = errors.New("dataset seems empty or malformed")

// Dataset is one successful load of the RSP data.
//
// A Dataset is never modified after Build returns. It is safe to share
// between goroutines; callers must treat Records as read-only.
type Dataset struct {
	// ID identifies this load in logs and output file names.
	ID uuid.UUID

	// Source names where the rows came from (file path or upload name).
	Source string

	// Header is the trimmed header row.
	Header []string

	// PriceColumn is the index chosen by ResolvePriceColumn.
	PriceColumn int

	// Records holds one entry per non-empty data row.
	Records []types.Record

	// RowCount is the number of parsed rows, header included.
	RowCount int

	// LoadedAt is when Build finished.
	LoadedAt time.Time
}

// Build validates the row set and normalizes it into a Dataset.
//
// Fewer than two rows (no header, or a header without data) fails with
// ErrMalformedInput and no partial dataset. Every other anomaly is absorbed
// row by row inside Normalize.
func Build(source string, rows [][]string) (*Dataset, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %d row(s) parsed from %s", ErrMalformedInput, len(rows), source)
	}

	header := cleanHeader(rows[0])

	return &Dataset{
		ID:          uuid.New(),
		Source:      source,
		Header:      header,
		PriceColumn: ResolvePriceColumn(header),
		Records:     Normalize(rows),
		RowCount:    len(rows),
		LoadedAt:    time.Now(),
	}, nil
}

// PriceColumnName returns the header text of the resolved price column.
func (d *Dataset) PriceColumnName() string {
	if d.PriceColumn < 0 || d.PriceColumn >= len(d.Header) {
		return ""
	}
	return d.Header[d.PriceColumn]
}
