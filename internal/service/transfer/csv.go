package transfer

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// encodeCSV renders rows (header included) as CSV bytes.
func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeCSV parses CSV bytes into records keyed by the header row. Rows
// shorter than the header are padded with empty values.
func decodeCSV(data []byte) ([]Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return recordsFromRows(rows), nil
}
