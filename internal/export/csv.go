package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"fieldbook/internal/models"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data to export")

// DefaultFilename is the suggested name for a CSV export.
const DefaultFilename = "football_fields.csv"

// ContentType of the CSV export.
const ContentType = "text/csv"

var columnOrder = []string{
	models.KeyName,
	models.KeyLocation,
	models.KeyCapacity,
	models.KeyPricePerHour,
	models.KeyStatus,
	models.KeyDescription,
	models.KeyCreatedAt,
	models.KeyUpdatedAt,
}

// Columns returns the header for docs: the keys of the first document without
// the id, known keys first, anything else sorted after them.
func Columns(docs []models.Document) []string {
	if len(docs) == 0 {
		return nil
	}
	first := docs[0]

	cols := make([]string, 0, len(first))
	for _, k := range columnOrder {
		if _, ok := first[k]; ok {
			cols = append(cols, k)
		}
	}

	var extra []string
	for k := range first {
		if k == models.KeyID || slices.Contains(columnOrder, k) {
			continue
		}
		extra = append(extra, k)
	}
	slices.Sort(extra)
	return append(cols, extra...)
}

// WriteCSV writes docs as CSV. Values missing from a document are left empty
// and keys absent from the first document are not exported.
func WriteCSV(w io.Writer, docs []models.Document) error {
	if len(docs) == 0 {
		return ErrNoData
	}

	cols := Columns(docs)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	row := make([]string, len(cols))
	for i, doc := range docs {
		for j, k := range cols {
			row[j] = formatValue(doc[k])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}
