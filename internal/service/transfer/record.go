// Package transfer moves tasks across the system boundary: CSV/JSON/XLSX
// export, import of the same formats, and the JSON backup artifact.
package transfer

import (
	"fmt"
	"strings"
	"time"
)

// Export column order. Import accepts these headers as well as their
// lowerCamel JSON counterparts.
var exportColumns = []string{
	"Title",
	"Status",
	"Category",
	"Due Date",
	"Due Time",
	"Priority",
	"Description",
	"Created At",
	"Updated At",
	"Completed At",
}

// Record is one imported row, keyed by source column name. CSV and XLSX
// produce string values; JSON may carry any scalar.
type Record map[string]any

// fieldAliases maps each logical task field to its accepted source keys, in
// lookup order: the lowerCamel JSON key first, then the export header.
var fieldAliases = map[string][]string{
	"title":       {"title", "Title"},
	"status":      {"status", "Status"},
	"category":    {"category", "Category"},
	"dueDate":     {"dueDate", "Due Date"},
	"dueTime":     {"dueTime", "Due Time"},
	"priority":    {"priority", "Priority"},
	"description": {"description", "Description"},
	"completedAt": {"completedAt", "Completed At"},
}

// lookup returns the record's value for a logical field, trying each alias
// in order. Missing keys and explicit nulls both come back as "".
func (r Record) lookup(field string) string {
	for _, key := range fieldAliases[field] {
		value, ok := r[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v)
		default:
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

// recordsFromRows turns a header row plus data rows into records. Rows
// shorter than the header (XLSX readers drop trailing empty cells) are
// padded with empty values.
func recordsFromRows(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

// dateLayouts are the accepted due-date and timestamp formats: date-only
// ISO first (the export format), then full RFC 3339.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseDate parses an imported date value. An empty value yields nil.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}

// formatDate renders a date-only ISO string, or "" for nil.
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// formatTimestamp renders a full RFC 3339 timestamp, or "" for nil.
func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
